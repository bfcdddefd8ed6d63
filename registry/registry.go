// Package registry maps room ids to the subscriptions currently listening on them
// and fans published events out to those subscriptions.
package registry

import (
	"log"
	"sort"
	"sync"

	"room-chat/backend/metrics"
	"room-chat/backend/models"
)

// DefaultQueueSize 每個訂閱佇列的預設容量
const DefaultQueueSize = 32

type connRoom struct {
	connID string
	roomID string
}

// topic 是一個聊天室的訂閱集合。pubMu 讓同一聊天室的發佈依呼叫順序進行。
type topic struct {
	pubMu sync.Mutex
	subs  map[uint64]*Subscription
}

// Registry 維護 roomID 到訂閱的對應。
// 訂閱集合受 mu 保護；Publish 在讀鎖下取快照，放開鎖之後才投遞。
type Registry struct {
	mu      sync.RWMutex
	topics  map[string]*topic
	byConn  map[connRoom]*Subscription
	nextID  uint64
	closed  bool
	size    int
	metrics *metrics.Collectors
}

// Option 設定 Registry
type Option func(*Registry)

// WithQueueSize 設定每個訂閱佇列的容量
func WithQueueSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.size = n
		}
	}
}

// WithMetrics 使用外部的指標集合
func WithMetrics(m *metrics.Collectors) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New 創建並返回一個新的 Registry 實例
func New(opts ...Option) *Registry {
	r := &Registry{
		topics: make(map[string]*topic),
		byConn: make(map[connRoom]*Subscription),
		size:   DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	return r
}

// QueueSize 回傳每個訂閱佇列的容量
func (r *Registry) QueueSize() int { return r.size }

// Subscribe 為 connID 訂閱 roomID。同一連線對同一聊天室只會有一個訂閱，
// 舊的訂閱會被移除並以 ErrReplaced 關閉。
func (r *Registry) Subscribe(roomID, connID string) *Subscription {
	r.mu.Lock()
	r.nextID++
	sub := newSubscription(r.nextID, roomID, connID, r.size)
	if r.closed {
		r.mu.Unlock()
		sub.close(ErrRegistryClosed)
		return sub
	}

	key := connRoom{connID: connID, roomID: roomID}
	old := r.byConn[key]
	if old != nil {
		r.removeLocked(old)
	}

	t, ok := r.topics[roomID]
	if !ok {
		t = &topic{subs: make(map[uint64]*Subscription)}
		r.topics[roomID] = t
	}
	t.subs[sub.id] = sub
	r.byConn[key] = sub
	count := len(t.subs)
	r.mu.Unlock()

	r.metrics.Subscriptions.Inc()
	if old != nil {
		old.close(ErrReplaced)
		r.metrics.Subscriptions.Dec()
	}
	log.Printf("Connection %s subscribed to room %s. Subscribers in room: %d", connID, roomID, count)
	return sub
}

// Unsubscribe 取消訂閱，未知或已結束的訂閱不做任何事
func (r *Registry) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	if r.drop(sub, ErrUnsubscribed) {
		log.Printf("Connection %s unsubscribed from room %s", sub.connID, sub.roomID)
	}
}

// Publish 將事件投遞給呼叫當下所有訂閱 roomID 的佇列，回傳成功放入的數量。
// 佇列已滿的訂閱者會被移除並關閉，不會拖慢其他訂閱者。沒有訂閱者時直接返回。
func (r *Registry) Publish(roomID string, evt models.ServerEvent) int {
	r.mu.RLock()
	t := r.topics[roomID]
	r.mu.RUnlock()
	r.metrics.Published.Inc()
	if t == nil {
		return 0
	}

	t.pubMu.Lock()
	defer t.pubMu.Unlock()

	subs := r.snapshot(t)
	delivered := 0
	for _, sub := range subs {
		switch sub.offer(evt) {
		case offerDelivered:
			delivered++
		case offerFull:
			if r.drop(sub, models.ErrSlowConsumerDropped) {
				r.metrics.SlowConsumers.Inc()
				log.Printf("Subscriber queue full, dropped connection %s from room %s", sub.connID, roomID)
			}
		case offerClosed:
			// 已在別處取消，快照之後才發生
		}
	}
	r.metrics.Delivered.Add(float64(delivered))
	return delivered
}

// Subscribers 回傳 roomID 目前的訂閱數
func (r *Registry) Subscribers(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.topics[roomID]; ok {
		return len(t.subs)
	}
	return 0
}

// Rooms 回傳目前至少有一個訂閱的聊天室
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]string, 0, len(r.topics))
	for id, t := range r.topics {
		if len(t.subs) > 0 {
			rooms = append(rooms, id)
		}
	}
	sort.Strings(rooms)
	return rooms
}

// Close 關閉所有訂閱，之後的 Subscribe 會拿到已關閉的訂閱
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	subs := make([]*Subscription, 0, len(r.byConn))
	for _, sub := range r.byConn {
		subs = append(subs, sub)
	}
	r.byConn = make(map[connRoom]*Subscription)
	r.topics = make(map[string]*topic)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.close(ErrRegistryClosed)
		r.metrics.Subscriptions.Dec()
	}
	log.Printf("Registry closed, released %d subscriptions", len(subs))
}

// snapshot 在讀鎖下複製訂閱集合，依訂閱順序排列
func (r *Registry) snapshot(t *topic) []*Subscription {
	r.mu.RLock()
	subs := make([]*Subscription, 0, len(t.subs))
	for _, sub := range t.subs {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	return subs
}

// drop 若 sub 仍是目前註冊的訂閱，移除並以 reason 關閉
func (r *Registry) drop(sub *Subscription, reason error) bool {
	r.mu.Lock()
	current, ok := r.byConn[connRoom{connID: sub.connID, roomID: sub.roomID}]
	if !ok || current != sub {
		r.mu.Unlock()
		return false
	}
	r.removeLocked(sub)
	r.mu.Unlock()

	sub.close(reason)
	r.metrics.Subscriptions.Dec()
	return true
}

// removeLocked 從索引中移除，呼叫端須持有寫鎖
func (r *Registry) removeLocked(sub *Subscription) {
	delete(r.byConn, connRoom{connID: sub.connID, roomID: sub.roomID})
	if t, ok := r.topics[sub.roomID]; ok {
		delete(t.subs, sub.id)
	}
}
