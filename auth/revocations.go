package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "roomchat:revoked:"

// RedisRevocations 將撤銷的 jti 存在 Redis，TTL 等於 token 剩餘的有效時間
type RedisRevocations struct {
	client *redis.Client
}

// NewRedisRevocations 連線到 addr
func NewRedisRevocations(addr string) *RedisRevocations {
	return &RedisRevocations{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping 確認 Redis 可用
func (r *RedisRevocations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // 已經過期，不需要記錄
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close 關閉 Redis 連線
func (r *RedisRevocations) Close() error {
	return r.client.Close()
}

// MemoryRevocations 是單一程序內的撤銷清單
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: make(map[string]time.Time)}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, id)
		}
	}
	if until.After(now) {
		m.entries[tokenID] = until
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[tokenID]
	return ok && exp.After(time.Now()), nil
}
