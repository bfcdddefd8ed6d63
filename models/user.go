package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterRequest 結構體用於處理註冊請求
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest 結構體用於處理登入請求
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ErrorResponse 結構體用於返回 JSON 格式的錯誤訊息
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AuthPayload 為註冊與登入成功後的回應
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User 結構體定義了使用者資料的欄位
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"` // 唯一索引在 database.EnsureIndexes 建立
	Name      string             `bson:"name" json:"name"`
	Password  string             `bson:"password" json:"-"` // 儲存哈希後的密碼，JSON 輸出時忽略
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Public 回傳不含密碼的使用者資料，用於推播事件
func (u User) Public() User {
	u.Password = ""
	return u
}
