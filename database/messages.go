package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"room-chat/backend/models"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateMessage 將新的聊天訊息插入到 MongoDB，並推進聊天室的 lastActivity。
// ID 與時間戳在這裡決定；暫時性錯誤以退避重試，重試用盡回傳 models.ErrStoreUnavailable。
func (s *Store) CreateMessage(ctx context.Context, roomID primitive.ObjectID, author models.User, text string) (*models.Message, error) {
	msg := models.Message{
		ID:         primitive.NewObjectID(),
		Text:       text,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		RoomID:     roomID,
		// MongoDB 只保存到毫秒，先截斷讓推播與快照的時間一致
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	insert := func() error {
		opCtx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		_, err := s.collection(messagesCollection).InsertOne(opCtx, msg)
		if err == nil || mongo.IsDuplicateKeyError(err) {
			// 前一次嘗試其實已寫入
			return nil
		}
		if isTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.RetryNotify(insert, backoff.WithContext(s.retry(), ctx), func(err error, wait time.Duration) {
		log.Printf("Error inserting message into room %s, retrying in %s: %v", roomID.Hex(), wait, err)
	}); err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		return nil, err
	}

	if err := s.touchRoom(ctx, roomID, msg.CreatedAt); err != nil {
		// 訊息已寫入，lastActivity 落後不影響投遞
		log.Printf("Error advancing lastActivity for room %s: %v", roomID.Hex(), err)
	}
	return &msg, nil
}

// touchRoom 以 $max 推進 lastActivity，保持單調
func (s *Store) touchRoom(ctx context.Context, roomID primitive.ObjectID, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := s.collection(roomsCollection).UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$max": bson.M{"lastActivity": at}})
	return err
}

// GetRoomSnapshot 取得聊天室最近 limit 則訊息，依 (createdAt, _id) 遞增排列
func (s *Store) GetRoomSnapshot(ctx context.Context, roomID primitive.ObjectID, limit int64) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"roomId": roomID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := s.collection(messagesCollection).Find(ctx, filter, findOptions)
	if err != nil {
		log.Printf("Error finding chat history for room %s: %v", roomID.Hex(), err)
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		log.Printf("Error decoding chat history for room %s: %v", roomID.Hex(), err)
		return nil, err
	}
	models.SortMessages(messages)
	return messages, nil
}

// CountMessages 回傳聊天室的訊息總數
func (s *Store) CountMessages(ctx context.Context, roomID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.collection(messagesCollection).CountDocuments(ctx, bson.M{"roomId": roomID})
}
