// Package reconciler merges fetched room history with the live event stream on the client,
// keeping every room's messages unique by id and ordered by (createdAt, id).
package reconciler

import (
	"sync"

	"room-chat/backend/models"
)

type roomState struct {
	loaded   bool
	timeline *Timeline
	pending  *Timeline // 第一次快照之前收到的即時事件
}

// Cache 保存每個聊天室的本地訊息序列，可同時被多個 goroutine 使用
type Cache struct {
	mu    sync.Mutex
	rooms map[string]*roomState
}

// NewCache 建立空的 Cache
func NewCache() *Cache {
	return &Cache{rooms: make(map[string]*roomState)}
}

func (c *Cache) room(roomID string) *roomState {
	st, ok := c.rooms[roomID]
	if !ok {
		st = &roomState{timeline: NewTimeline(), pending: NewTimeline()}
		c.rooms[roomID] = st
	}
	return st
}

// LoadSnapshot 以抓取到的歷史訊息取代聊天室的本地序列。
// 快照之前緩衝的即時事件，以及本地已知但比快照最後一筆還新的訊息，會一併合併進來。
func (c *Cache) LoadSnapshot(roomID string, msgs []models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.room(roomID)
	next := NewTimeline(msgs...)

	last, hasLast := next.Last()
	for _, m := range st.timeline.Messages() {
		if !hasLast || models.MessageLess(last, m) {
			next.Insert(m)
		}
	}
	for _, m := range st.pending.Messages() {
		next.Insert(m)
	}

	st.timeline = next
	st.pending = NewTimeline()
	st.loaded = true
}

// ApplyLiveEvent 插入即時推送的訊息，回傳是否為新訊息。
// 快照尚未載入時先緩衝，等快照到達再合併，不會遺失。
func (c *Cache) ApplyLiveEvent(roomID string, msg models.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.room(roomID)
	if !st.loaded {
		if st.timeline.Has(msg.Key()) {
			return false
		}
		return st.pending.Insert(msg)
	}
	return st.timeline.Insert(msg)
}

// Invalidate 標記聊天室需要重新載入快照（例如重新連線之後）。
// 既有訊息保留，直到新快照到達。
func (c *Cache) Invalidate(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.rooms[roomID]; ok {
		st.loaded = false
	}
}

// Loaded 回傳聊天室是否已載入快照
func (c *Cache) Loaded(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.rooms[roomID]
	return ok && st.loaded
}

// Messages 回傳聊天室目前用於顯示的序列。快照尚未載入時包含已緩衝的事件。
func (c *Cache) Messages(roomID string) []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.rooms[roomID]
	if !ok {
		return nil
	}
	if st.loaded || st.pending.Len() == 0 {
		return st.timeline.Messages()
	}
	merged := NewTimeline(st.timeline.Messages()...)
	for _, m := range st.pending.Messages() {
		merged.Insert(m)
	}
	return merged.Messages()
}

// Forget 移除聊天室的本地狀態
func (c *Cache) Forget(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}
