package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room 代表一個聊天室的元資料
type Room struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	GroupID      primitive.ObjectID `bson:"groupId" json:"groupId"`
	Tags         []string           `bson:"tags" json:"tags"`
	LastActivity time.Time          `bson:"lastActivity" json:"lastActivity"` // 每則訊息推進一次，用於「最近活躍」排序
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// RoomDetail 是單一聊天室的回應，附帶訊息總數
type RoomDetail struct {
	Room
	MessageCount int64 `json:"messageCount"`
}

// CreateRoomRequest 定義創建聊天室的請求體
type CreateRoomRequest struct {
	Name        string   `json:"name" validate:"required,max=64"`
	Description string   `json:"description" validate:"max=512"`
	GroupID     string   `json:"groupId" validate:"required,len=24,hexadecimal"`
	Tags        []string `json:"tags" validate:"max=16,dive,required,max=32"`
}

// RoomFilter 為聊天室列表的查詢條件，零值代表不篩選
type RoomFilter struct {
	GroupID primitive.ObjectID
	Tag     string
	Keyword string
}

// Membership 代表使用者與聊天室之間的授權關係，(userId, roomId) 唯一
type Membership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	RoomID   primitive.ObjectID `bson:"roomId" json:"roomId"`
	JoinedAt time.Time          `bson:"joinedAt" json:"joinedAt"`
}
