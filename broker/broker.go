// Package broker is the forwarding point between message creation and live delivery.
package broker

import (
	"context"
	"sync"

	"room-chat/backend/models"
	"room-chat/backend/registry"
)

// Broker 將新建立的訊息交給 Registry 扇出。它不保存歷史，也不去重；
// 重複的訊息由用戶端的 reconciler 依 ID 合併。
type Broker struct {
	registry *registry.Registry

	mu    sync.Mutex
	rooms map[string]chan struct{} // 每個聊天室一個容量 1 的號誌
}

// New 創建並返回一個新的 Broker 實例
func New(reg *registry.Registry) *Broker {
	return &Broker{registry: reg, rooms: make(map[string]chan struct{})}
}

// Create 在同一聊天室的臨界區內執行 create 並 Accept 其結果。
// create 內決定的 (createdAt, id) 因此與發布順序一致，即使寫入被重試也一樣。
// 等待臨界區時 ctx 結束則回傳 ctx.Err()。
func (b *Broker) Create(ctx context.Context, roomID string, create func(context.Context) (*models.Message, error)) (*models.Message, error) {
	sem := b.roomLock(roomID)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-sem }()

	msg, err := create(ctx)
	if err != nil {
		return nil, err
	}
	b.Accept(*msg)
	return msg, nil
}

func (b *Broker) roomLock(roomID string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	sem, ok := b.rooms[roomID]
	if !ok {
		sem = make(chan struct{}, 1)
		b.rooms[roomID] = sem
	}
	return sem
}

// Accept 每則成功寫入的訊息呼叫一次。投遞是非阻塞的，不等待任何訂閱者讀取。
func (b *Broker) Accept(msg models.Message) {
	b.registry.Publish(msg.RoomID.Hex(), models.NewMessageAdded(msg))
}

// MemberJoined 通知聊天室有新成員加入
func (b *Broker) MemberJoined(roomID string, user models.User) {
	b.publishMember(models.EventMemberJoined, roomID, user)
}

// MemberLeft 通知聊天室有成員離開
func (b *Broker) MemberLeft(roomID string, user models.User) {
	b.publishMember(models.EventMemberLeft, roomID, user)
}

func (b *Broker) publishMember(t models.EventType, roomID string, user models.User) {
	u := user.Public()
	b.registry.Publish(roomID, models.ServerEvent{Type: t, RoomID: roomID, User: &u})
}
