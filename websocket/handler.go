// Package websocket binds authenticated websocket connections to room subscriptions.
package websocket

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"room-chat/backend/auth"
	"room-chat/backend/metrics"
	"room-chat/backend/models"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler 處理 WebSocket 連線請求：先驗證 token，成功後才建立 Session
type Handler struct {
	identity auth.Identity
	deps     SessionDeps
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*Session]struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewHandler 創建並返回一個新的 Handler。allowedOrigins 為空時允許所有來源。
func NewHandler(identity auth.Identity, deps SessionDeps, allowedOrigins []string) *Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		identity: identity,
		deps:     deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || lo.Contains(allowedOrigins, origin)
			},
		},
		sessions: make(map[*Session]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// bearerProtocol 是瀏覽器無法設定 header 時，放在 Sec-WebSocket-Protocol 的 token 前綴
const bearerProtocol = "bearer."

// tokenFromRequest 依序從 Authorization header、Sec-WebSocket-Protocol 與 token 查詢參數取得憑證。
// 來自子協定時一併回傳該子協定，升級時必須原樣回覆給瀏覽器。
func tokenFromRequest(r *http.Request) (token, protocol string) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1]), ""
		}
	}
	for _, p := range websocket.Subprotocols(r) {
		if t, ok := strings.CutPrefix(p, bearerProtocol); ok && t != "" {
			return t, p
		}
	}
	return r.URL.Query().Get("token"), ""
}

// ServeWS 處理 WebSocket 連線請求
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token, protocol := tokenFromRequest(r)
	user, authErr := h.identity.Authenticate(r.Context(), token)
	if authErr == nil && user == nil {
		authErr = models.ErrAuthenticationFailed
	}

	var header http.Header
	if protocol != "" {
		header = http.Header{"Sec-Websocket-Protocol": {protocol}}
	}
	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	if authErr != nil {
		// 驗證失敗：回報錯誤後直接關閉，不建立任何 Session 或訂閱
		h.deps.Metrics.AuthFailures.Inc()
		log.Printf("Rejected WebSocket handshake from %s: %v", r.RemoteAddr, authErr)
		reject(conn, authErr)
		return
	}

	session := NewSession(*user, h.deps)
	if !h.track(session) {
		session.Close(ErrSessionClosed)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
		conn.Close()
		return
	}
	log.Printf("Connection %s opened for user %s", session.ID(), user.ID.Hex())

	client := newClient(conn, session)
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		defer h.untrack(session)
		client.readPump(h.ctx)
		session.Wait()
	}()
}

func reject(conn *websocket.Conn, err error) {
	defer conn.Close()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if werr := conn.WriteJSON(models.NewErrorEvent("", "", err)); werr != nil {
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(CloseUnauthorized, models.CodeAuthenticationFailed), time.Now().Add(writeWait))
}

func (h *Handler) track(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx.Err() != nil {
		return false
	}
	h.sessions[s] = struct{}{}
	return true
}

func (h *Handler) untrack(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s)
}

// CloseUser 關閉使用者所有的連線（例如登出之後），回傳關閉的數量
func (h *Handler) CloseUser(userID primitive.ObjectID) int {
	h.mu.Lock()
	sessions := lo.Filter(lo.Keys(h.sessions), func(s *Session, _ int) bool {
		return s.User().ID == userID
	})
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close(ErrLoggedOut)
	}
	return len(sessions)
}

// ActiveSessions 回傳目前的連線數
func (h *Handler) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown 關閉所有連線並等待 goroutine 結束，逾時回傳 context 的錯誤
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.cancel()
	sessions := lo.Keys(h.sessions)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close(nil)
	}
	log.Printf("Closing %d WebSocket sessions", len(sessions))

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
