package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength 單則訊息文字的上限（字元數）
const MaxMessageLength = 2000

// Message 代表一個聊天訊息，建立後不可變更
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text       string             `bson:"text" json:"text"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	RoomID     primitive.ObjectID `bson:"roomId" json:"roomId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// SendMessageRequest 定義透過 HTTP 發送訊息的請求體
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// Key 回傳訊息 ID 的 hex 字串，作為去重的鍵
func (m Message) Key() string {
	return m.ID.Hex()
}

// MessageLess 依 (createdAt, id) 遞增排序
func MessageLess(a, b Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.Hex() < b.ID.Hex()
}

// SortMessages 就地排序
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return MessageLess(msgs[i], msgs[j])
	})
}
