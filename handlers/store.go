package handlers

//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_handlers.go -package=mocks -mock_names=Store=MockAPIStore,Tokens=MockTokens,SessionCloser=MockSessionCloser

import (
	"context"

	"room-chat/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store 是 HTTP API 需要的持久化操作，由 database.Store 實作。
// 查詢找不到資料時回傳 (nil, nil)。
type Store interface {
	InsertUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, limit int64) ([]models.User, error)

	InsertGroup(ctx context.Context, group models.Group) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	FindGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)

	InsertRoom(ctx context.Context, room models.Room) (*models.Room, error)
	FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error)
	ListRooms(ctx context.Context, filter models.RoomFilter, limit int64) ([]models.Room, error)
	JoinRoom(ctx context.Context, userID, roomID primitive.ObjectID) (bool, error)
	LeaveRoom(ctx context.Context, userID, roomID primitive.ObjectID) (bool, error)
	IsMember(ctx context.Context, userID, roomID primitive.ObjectID) (bool, error)
	GetUserRooms(ctx context.Context, userID primitive.ObjectID) ([]models.Room, error)
	GetRoomMembers(ctx context.Context, roomID primitive.ObjectID) ([]models.User, error)

	CreateMessage(ctx context.Context, roomID primitive.ObjectID, author models.User, text string) (*models.Message, error)
	GetRoomSnapshot(ctx context.Context, roomID primitive.ObjectID, limit int64) ([]models.Message, error)
	CountMessages(ctx context.Context, roomID primitive.ObjectID) (int64, error)
}

// Tokens 簽發與撤銷登入 token，由 auth.Authenticator 實作
type Tokens interface {
	Issue(user models.User) (string, error)
	Revoke(ctx context.Context, token string) error
}

// SessionCloser 關閉使用者的即時連線，由 websocket.Handler 實作
type SessionCloser interface {
	CloseUser(userID primitive.ObjectID) int
}
