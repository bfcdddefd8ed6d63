package registry

import (
	"errors"
	"sync"

	"room-chat/backend/models"
)

var (
	ErrUnsubscribed   = errors.New("subscription cancelled")
	ErrReplaced       = errors.New("subscription replaced by a newer one for the same room")
	ErrRegistryClosed = errors.New("registry closed")
)

// offerResult 為單次投遞的結果
type offerResult int

const (
	offerDelivered offerResult = iota
	offerFull
	offerClosed
)

// Subscription 是一個連線對一個聊天室的訂閱，擁有一條有界的投遞佇列。
// 佇列只會被關閉一次，關閉後 Err 回傳原因。
type Subscription struct {
	id     uint64
	roomID string
	connID string

	ch   chan models.ServerEvent
	done chan struct{}

	mu     sync.Mutex // 保護 closed 與對 ch 的寫入
	closed bool
	err    error
}

func newSubscription(id uint64, roomID, connID string, size int) *Subscription {
	return &Subscription{
		id:     id,
		roomID: roomID,
		connID: connID,
		ch:     make(chan models.ServerEvent, size),
		done:   make(chan struct{}),
	}
}

func (s *Subscription) ID() uint64     { return s.id }
func (s *Subscription) RoomID() string { return s.roomID }
func (s *Subscription) ConnID() string { return s.connID }

// C 回傳投遞佇列，佇列關閉代表訂閱結束
func (s *Subscription) C() <-chan models.ServerEvent { return s.ch }

// Done 在訂閱結束時關閉
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err 回傳訂閱結束的原因，尚未結束時為 nil
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// offer 以非阻塞方式放入佇列
func (s *Subscription) offer(evt models.ServerEvent) offerResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return offerClosed
	}
	select {
	case s.ch <- evt:
		return offerDelivered
	default:
		return offerFull
	}
}

// close 關閉佇列並記錄原因，重複呼叫無作用
func (s *Subscription) close(reason error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.err = reason
	close(s.ch)
	close(s.done)
	return true
}
