// Package client is a Go client for the chat transport. It subscribes to rooms over the
// websocket, fetches room history over HTTP and keeps a reconciled local copy of each room.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"room-chat/backend/models"
	"room-chat/backend/reconciler"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// ErrClosed 連線已關閉
var ErrClosed = errors.New("client closed")

// 對應伺服器端的自訂關閉代碼
const (
	closeUnauthorized = 4401
	closeSlowConsumer = 4008
)

// Options 設定連線
type Options struct {
	URL         string // WebSocket 端點，例如 ws://localhost:8080/ws
	HTTPBase    string // HTTP API 位址，例如 http://localhost:8080
	Token       string
	HTTPClient  *http.Client
	EventBuffer int
}

// Client 維護一條 WebSocket 連線與每個聊天室的本地訊息序列
type Client struct {
	conn  *websocket.Conn
	opts  Options
	httpc *http.Client
	cache *reconciler.Cache

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan models.ServerEvent
	rooms   map[string]struct{} // 目前訂閱中的聊天室，其他聊天室的即時訊息一律忽略
	err     error

	events chan models.ServerEvent
	done   chan struct{}
}

// Dial 以 bearer token 建立連線並啟動讀取迴圈
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, opts.URL, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.URL, err)
	}

	c := &Client{
		conn:    conn,
		opts:    opts,
		httpc:   opts.HTTPClient,
		cache:   reconciler.NewCache(),
		pending: make(map[string]chan models.ServerEvent),
		rooms:   make(map[string]struct{}),
		events:  make(chan models.ServerEvent, opts.EventBuffer),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events 回傳沒有對應請求的推播（成員進出、錯誤）。讀取太慢時多餘的事件會被丟棄。
func (c *Client) Events() <-chan models.ServerEvent { return c.events }

// Done 在連線結束時關閉
func (c *Client) Done() <-chan struct{} { return c.done }

// Err 回傳連線結束的原因
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Messages 回傳聊天室目前的本地序列
func (c *Client) Messages(roomID string) []models.Message {
	return c.cache.Messages(roomID)
}

// Subscribe 訂閱聊天室，收到 subscribed 之後才抓取歷史快照，
// 訂閱期間收到的即時訊息會由 reconciler 合併。
func (c *Client) Subscribe(ctx context.Context, roomID string) error {
	// subscribed 回覆之前就可能收到推播，先標記
	c.setSubscribed(roomID, true)
	if _, err := c.request(ctx, models.ClientRequest{Type: models.RequestSubscribe, RoomID: roomID}); err != nil {
		c.setSubscribed(roomID, false)
		c.cache.Forget(roomID)
		return err
	}
	return c.Resync(ctx, roomID)
}

// Resync 重新抓取聊天室快照，例如重新連線之後
func (c *Client) Resync(ctx context.Context, roomID string) error {
	c.cache.Invalidate(roomID)
	msgs, err := c.fetchSnapshot(ctx, roomID)
	if err != nil {
		return err
	}
	c.cache.LoadSnapshot(roomID, msgs)
	return nil
}

// Unsubscribe 取消訂閱並移除本地序列。伺服器佇列中還沒送達的訊息會被忽略。
func (c *Client) Unsubscribe(ctx context.Context, roomID string) error {
	c.setSubscribed(roomID, false)
	_, err := c.request(ctx, models.ClientRequest{Type: models.RequestUnsubscribe, RoomID: roomID})
	c.cache.Forget(roomID)
	return err
}

// Subscribed 回報聊天室是否在訂閱中
func (c *Client) Subscribed(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[roomID]
	return ok
}

func (c *Client) setSubscribed(roomID string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.rooms[roomID] = struct{}{}
	} else {
		delete(c.rooms, roomID)
	}
}

// Send 發送訊息並回傳伺服器寫入後的正式訊息
func (c *Client) Send(ctx context.Context, roomID, text string) (*models.Message, error) {
	reply, err := c.request(ctx, models.ClientRequest{Type: models.RequestSend, RoomID: roomID, Text: text})
	if err != nil {
		return nil, err
	}
	if reply.Message == nil {
		return nil, fmt.Errorf("sent reply for room %s without message", roomID)
	}
	if c.Subscribed(roomID) {
		c.cache.ApplyLiveEvent(roomID, *reply.Message)
	}
	return reply.Message, nil
}

// Close 送出關閉訊框並結束連線
func (c *Client) Close() error {
	c.writeMu.Lock()
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()

	select {
	case <-c.done:
	case <-time.After(writeWait):
	}
	c.conn.Close()
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

func (c *Client) request(ctx context.Context, req models.ClientRequest) (models.ServerEvent, error) {
	req.ID = uuid.NewString()
	reply := make(chan models.ServerEvent, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return models.ServerEvent{}, err
	}
	c.pending[req.ID] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		return models.ServerEvent{}, fmt.Errorf("write %s request: %w", req.Type, err)
	}

	select {
	case evt := <-reply:
		if evt.Type == models.EventError && evt.Error != nil {
			return evt, models.ErrorFromCode(evt.Error.Code, evt.Error.Message)
		}
		return evt, nil
	case <-c.done:
		return models.ServerEvent{}, c.Err()
	case <-ctx.Done():
		return models.ServerEvent{}, ctx.Err()
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var evt models.ServerEvent
		if err := c.conn.ReadJSON(&evt); err != nil {
			c.fail(closeReason(err))
			return
		}
		c.dispatch(evt)
	}
}

func (c *Client) dispatch(evt models.ServerEvent) {
	if evt.ID != "" {
		c.mu.Lock()
		reply, ok := c.pending[evt.ID]
		c.mu.Unlock()
		if ok {
			reply <- evt
			return
		}
	}

	if evt.Type == models.EventMessageAdded && evt.Message != nil {
		if c.Subscribed(evt.RoomID) {
			c.cache.ApplyLiveEvent(evt.RoomID, *evt.Message)
		}
		return
	}

	select {
	case c.events <- evt:
	default:
		log.Printf("Dropping %s event for room %s: event buffer full", evt.Type, evt.RoomID)
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// closeReason 將伺服器的關閉代碼轉回對應的錯誤
func closeReason(err error) error {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	switch ce.Code {
	case closeUnauthorized:
		return models.ErrAuthenticationFailed
	case closeSlowConsumer:
		return models.ErrSlowConsumerDropped
	}
	return fmt.Errorf("%w: %v", ErrClosed, ce)
}

func (c *Client) fetchSnapshot(ctx context.Context, roomID string) ([]models.Message, error) {
	url := strings.TrimRight(c.opts.HTTPBase, "/") + "/rooms/" + roomID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.Token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history for room %s: %w", roomID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Code != "" {
			return nil, models.ErrorFromCode(body.Code, body.Message)
		}
		return nil, fmt.Errorf("fetch history for room %s: status %d", roomID, resp.StatusCode)
	}

	var msgs []models.Message
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode history for room %s: %w", roomID, err)
	}
	return msgs, nil
}
