package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson" // 引入 bson 套件
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection       = "users"
	groupsCollection      = "groups"
	roomsCollection       = "rooms"
	membershipsCollection = "memberships"
	messagesCollection    = "messages"

	// 單次資料庫操作的逾時
	opTimeout = 5 * time.Second
)

// Store 是 MongoDB 上的持久化層，每個實例擁有自己的連線
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	retry  func() backoff.BackOff
}

// ConnectMongoDB 建立並初始化 MongoDB 連線，Ping 失敗時以指數退避重試
func ConnectMongoDB(ctx context.Context, uri, name string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	// Ping the primary to verify connection
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.RetryNotify(ping, policy, func(err error, wait time.Duration) {
		log.Printf("MongoDB not reachable (%v), retrying in %s", err, wait)
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Println("Connected to MongoDB successfully!")
	return NewStore(client, name), nil
}

// NewStore 以既有的 client 建立 Store
func NewStore(client *mongo.Client, name string) *Store {
	return &Store{
		client: client,
		db:     client.Database(name),
		retry: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = time.Second
			return backoff.WithMaxRetries(b, 3)
		},
	}
}

// EnsureIndexes 建立唯一索引與查詢所需的索引
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		membershipsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "roomId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		messagesCollection: {
			// 快照依 (createdAt, _id) 排序
			{Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		},
		roomsCollection: {
			{Keys: bson.D{{Key: "lastActivity", Value: -1}}},
			{Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "lastActivity", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	log.Println("MongoDB indexes ensured.")
	return nil
}

// DisconnectMongoDB 關閉 MongoDB 連線
func (s *Store) DisconnectMongoDB() {
	if s == nil || s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	} else {
		log.Println("Disconnected from MongoDB.")
	}
}

// Ping 用於健康檢查
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// isTransient 判斷是否值得重試
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorLabel("RetryableWriteError") {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}
