package websocket

//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_session_store.go -package=mocks

import (
	"context"

	"room-chat/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store 是連線階段需要的持久化操作，由 database.Store 實作
type Store interface {
	FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error)
	IsMember(ctx context.Context, userID, roomID primitive.ObjectID) (bool, error)
	CreateMessage(ctx context.Context, roomID primitive.ObjectID, author models.User, text string) (*models.Message, error)
}
