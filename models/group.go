package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultGroupIcon 未指定圖示時使用
const DefaultGroupIcon = "💬"

// Group 為聊天室的分類
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name" validate:"required,max=64"`
	Icon        string             `bson:"icon" json:"icon"`
	Description string             `bson:"description" json:"description" validate:"max=512"`
}
