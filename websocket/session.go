package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"room-chat/backend/broker"
	"room-chat/backend/metrics"
	"room-chat/backend/models"
	"room-chat/backend/registry"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

var (
	// ErrSessionClosed 連線已關閉後的請求
	ErrSessionClosed = errors.New("session closed")
	// ErrLoggedOut 使用者登出，連線被伺服器關閉
	ErrLoggedOut = errors.New("logged out")
)

// State 是連線階段的狀態
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// SessionDeps 是每個連線共用的元件
type SessionDeps struct {
	Store    Store
	Broker   *broker.Broker
	Registry *registry.Registry
	Metrics  *metrics.Collectors

	OutboundSize int        // 下行佇列容量，預設 64
	MessageRate  rate.Limit // 每秒可發送的訊息數，0 代表不限制
	MessageBurst int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Session 代表一個已驗證的連線。每個聊天室最多一個訂閱，
// 每個訂閱有一個投遞 goroutine 把佇列轉送到下行佇列 out。
type Session struct {
	id      string
	user    models.User
	deps    SessionDeps
	limiter *rate.Limiter

	mu     sync.Mutex
	state  State
	subs   map[string]*registry.Subscription
	tails  map[string]chan struct{} // 每個聊天室最後一個投遞 goroutine 結束時關閉
	reason error

	out  chan models.ServerEvent
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSession 建立已通過驗證的連線階段
func NewSession(user models.User, deps SessionDeps) *Session {
	if deps.OutboundSize <= 0 {
		deps.OutboundSize = 64
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	limit := deps.MessageRate
	burst := deps.MessageBurst
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}

	s := &Session{
		id:      uuid.NewString(),
		user:    user,
		deps:    deps,
		limiter: rate.NewLimiter(limit, burst),
		state:   StateAuthenticated,
		subs:    make(map[string]*registry.Subscription),
		tails:   make(map[string]chan struct{}),
		out:     make(chan models.ServerEvent, deps.OutboundSize),
		done:    make(chan struct{}),
	}
	deps.Metrics.Sessions.Inc()
	return s
}

func (s *Session) ID() string        { return s.id }
func (s *Session) User() models.User { return s.user }

// Outbound 回傳下行佇列，由 writePump 讀取
func (s *Session) Outbound() <-chan models.ServerEvent { return s.out }

// Done 在連線關閉時關閉
func (s *Session) Done() <-chan struct{} { return s.done }

// State 回傳目前狀態
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reason 回傳關閉原因，正常斷線時為 nil
func (s *Session) Reason() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Rooms 回傳目前訂閱的聊天室
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := lo.Keys(s.subs)
	sort.Strings(rooms)
	return rooms
}

// Handle 處理一個上行請求並回傳回應事件。處理中的 panic 會被攔下，不影響連線的清理。
func (s *Session) Handle(ctx context.Context, req models.ClientRequest) (reply models.ServerEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic handling %s for connection %s: %v", req.Type, s.id, r)
			reply = s.fail(req, fmt.Errorf("internal error"))
		}
	}()

	if err := validate.Struct(req); err != nil {
		return s.fail(req, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err))
	}

	switch req.Type {
	case models.RequestSubscribe:
		if err := s.Subscribe(ctx, req.RoomID); err != nil {
			return s.fail(req, err)
		}
		return models.ServerEvent{Type: models.EventSubscribed, ID: req.ID, RoomID: req.RoomID}
	case models.RequestUnsubscribe:
		s.Unsubscribe(req.RoomID)
		return models.ServerEvent{Type: models.EventUnsubscribed, ID: req.ID, RoomID: req.RoomID}
	case models.RequestSend:
		msg, err := s.Send(ctx, req.RoomID, req.Text)
		if err != nil {
			return s.fail(req, err)
		}
		return models.ServerEvent{Type: models.EventSent, ID: req.ID, RoomID: req.RoomID, Message: msg}
	}
	return s.fail(req, fmt.Errorf("%w: unknown request type %q", models.ErrInvalidRequest, req.Type))
}

func (s *Session) fail(req models.ClientRequest, err error) models.ServerEvent {
	evt := models.NewErrorEvent(req.ID, req.RoomID, err)
	s.deps.Metrics.RequestErrors.WithLabelValues(evt.Error.Code).Inc()
	return evt
}

// authorize 確認聊天室存在且使用者是成員
func (s *Session) authorize(ctx context.Context, roomID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid room id", models.ErrInvalidRequest)
	}
	room, err := s.deps.Store.FindRoomByID(ctx, oid)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if room == nil {
		return primitive.NilObjectID, models.ErrRoomNotFound
	}
	member, err := s.deps.Store.IsMember(ctx, s.user.ID, oid)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if !member {
		return primitive.NilObjectID, models.ErrNotAMember
	}
	return oid, nil
}

// Subscribe 檢查成員關係後向 Registry 註冊。重複訂閱同一聊天室會取代前一個。
func (s *Session) Subscribe(ctx context.Context, roomID string) error {
	if s.State() == StateClosed {
		return ErrSessionClosed
	}
	if _, err := s.authorize(ctx, roomID); err != nil {
		return err
	}

	sub := s.deps.Registry.Subscribe(roomID, s.id)

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		s.deps.Registry.Unsubscribe(sub)
		return ErrSessionClosed
	}
	prev := s.tails[roomID]
	finished := make(chan struct{})
	s.tails[roomID] = finished
	s.subs[roomID] = sub
	s.state = StateActive
	s.wg.Add(1)
	s.mu.Unlock()

	go s.deliver(sub, prev, finished)
	return nil
}

// Unsubscribe 取消聊天室的訂閱，沒有訂閱時不做任何事
func (s *Session) Unsubscribe(roomID string) {
	s.mu.Lock()
	sub, ok := s.subs[roomID]
	if ok {
		delete(s.subs, roomID)
	}
	s.mu.Unlock()

	if ok {
		s.deps.Registry.Unsubscribe(sub)
	}
}

// Send 建立訊息並交給 Broker 扇出，回傳寫入後的正式訊息
func (s *Session) Send(ctx context.Context, roomID, text string) (*models.Message, error) {
	if s.State() == StateClosed {
		return nil, ErrSessionClosed
	}
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, fmt.Errorf("%w: message text must be 1-%d characters", models.ErrInvalidRequest, models.MaxMessageLength)
	}
	if !s.limiter.Allow() {
		return nil, models.ErrRateLimited
	}

	oid, err := s.authorize(ctx, roomID)
	if err != nil {
		return nil, err
	}

	msg, err := s.deps.Broker.Create(ctx, oid.Hex(), func(ctx context.Context) (*models.Message, error) {
		return s.deps.Store.CreateMessage(ctx, oid, s.user, text)
	})
	if err != nil {
		log.Printf("Error saving message from %s to room %s: %v", s.user.ID.Hex(), roomID, err)
		return nil, err
	}
	s.deps.Metrics.MessagesCreated.Inc()
	return msg, nil
}

// Close 取消所有訂閱並結束連線，可重複呼叫。reason 為 nil 代表正常斷線。
func (s *Session) Close(reason error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.reason = reason
	subs := lo.Values(s.subs)
	s.subs = make(map[string]*registry.Subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		s.deps.Registry.Unsubscribe(sub)
	}
	close(s.done)
	s.deps.Metrics.Sessions.Dec()

	if reason != nil {
		log.Printf("Connection %s (user %s) closed: %v", s.id, s.user.ID.Hex(), reason)
	} else {
		log.Printf("Connection %s (user %s) closed", s.id, s.user.ID.Hex())
	}
}

// Wait 等待所有投遞 goroutine 結束
func (s *Session) Wait() {
	s.wg.Wait()
}

// push 放入下行佇列，連線關閉時回傳 false
func (s *Session) push(evt models.ServerEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- evt:
		return true
	case <-s.done:
		return false
	}
}

// deliver 把訂閱佇列轉送到下行佇列。同一聊天室的前一個投遞結束後才開始，保持順序。
// 佇列因消費太慢被 Registry 關閉時，整個連線被強制斷開。
func (s *Session) deliver(sub *registry.Subscription, prev <-chan struct{}, finished chan struct{}) {
	defer s.wg.Done()
	defer close(finished)

	if prev != nil {
		select {
		case <-prev:
		case <-s.done:
			return
		}
	}

	for evt := range sub.C() {
		if !s.forward(sub, evt) {
			break
		}
	}

	if errors.Is(sub.Err(), models.ErrSlowConsumerDropped) {
		s.Close(models.ErrSlowConsumerDropped)
	}
}

// forward 與 push 相同，但訂閱因消費太慢被移除時立即放棄，不再等下行佇列
func (s *Session) forward(sub *registry.Subscription, evt models.ServerEvent) bool {
	select {
	case s.out <- evt:
		return true
	case <-s.done:
		return false
	case <-sub.Done():
		if errors.Is(sub.Err(), models.ErrSlowConsumerDropped) {
			return false
		}
	}
	// 正常取消或被取代：佇列中剩下的事件仍要送出
	return s.push(evt)
}
