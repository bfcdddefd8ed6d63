package reconciler

import (
	"sort"

	"room-chat/backend/models"
)

// Timeline 是以訊息 ID 為鍵的有序集合，依 (createdAt, id) 遞增排列。
// Insert 只在 ID 不存在時插入，因此重複套用同一事件不會有額外效果。
type Timeline struct {
	msgs []models.Message
	seen map[string]struct{}
}

// NewTimeline 以任意順序的訊息建立 Timeline，重複的 ID 只保留第一筆
func NewTimeline(msgs ...models.Message) *Timeline {
	t := &Timeline{
		msgs: make([]models.Message, 0, len(msgs)),
		seen: make(map[string]struct{}, len(msgs)),
	}
	for _, m := range msgs {
		t.Insert(m)
	}
	return t
}

// Insert 插入訊息，已存在時回傳 false
func (t *Timeline) Insert(m models.Message) bool {
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	key := m.Key()
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}

	// 大多數情況是附加在尾端
	n := len(t.msgs)
	if n == 0 || models.MessageLess(t.msgs[n-1], m) {
		t.msgs = append(t.msgs, m)
		return true
	}
	i := sort.Search(n, func(i int) bool { return models.MessageLess(m, t.msgs[i]) })
	t.msgs = append(t.msgs, models.Message{})
	copy(t.msgs[i+1:], t.msgs[i:])
	t.msgs[i] = m
	return true
}

// Has 回傳 ID 是否已存在
func (t *Timeline) Has(id string) bool {
	_, ok := t.seen[id]
	return ok
}

// Len 回傳訊息數
func (t *Timeline) Len() int { return len(t.msgs) }

// Last 回傳最後一則訊息
func (t *Timeline) Last() (models.Message, bool) {
	if len(t.msgs) == 0 {
		return models.Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}

// Messages 回傳訊息的副本
func (t *Timeline) Messages() []models.Message {
	out := make([]models.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}
