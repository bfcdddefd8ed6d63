package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"room-chat/backend/models"

	"github.com/gorilla/websocket"
)

const (
	// 將訊息寫入到遠端對等點的最長時間
	writeWait = 10 * time.Second

	// 允許從遠端對等點讀取下一個 pong 訊息的最長時間。
	pongWait = 60 * time.Second

	// 發送 ping 訊息給遠端對等點的週期。
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// 自訂的關閉代碼
const (
	CloseUnauthorized = 4401
	CloseSlowConsumer = 4008
)

// Client 代表一個 WebSocket 客戶端，負責在連線與 Session 之間搬運訊息
type Client struct {
	conn    *websocket.Conn // WebSocket 連線物件，透過它來讀寫訊息
	session *Session
}

func newClient(conn *websocket.Conn, session *Session) *Client {
	return &Client{conn: conn, session: session}
}

// readPump 讀取用戶傳來的請求，交給 Session 處理。
// 離開時無條件關閉 Session，所有訂閱都會被取消。
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.session.Close(nil)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Connection %s disconnected gracefully.", c.session.ID())
			} else if !errors.Is(err, websocket.ErrCloseSent) {
				log.Printf("Error reading from connection %s: %v", c.session.ID(), err)
			}
			return
		}

		// 解析收到的請求
		var req models.ClientRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Printf("Error unmarshalling request from %s: %v", c.session.ID(), err)
			if !c.session.push(models.NewErrorEvent("", "", models.ErrInvalidRequest)) {
				return
			}
			continue
		}

		reply := c.session.Handle(ctx, req)
		if !c.session.push(reply) {
			return
		}
	}
}

// writePump 把下行佇列的事件寫到連線上，並定時送出 ping。
// 寫入失敗（含逾時）會結束連線，觸發斷線流程。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case evt := <-c.session.Outbound():
			if err := c.writeEvent(evt); err != nil {
				log.Printf("Error writing to connection %s: %v", c.session.ID(), err)
				c.session.Close(err)
				return
			}

		// 接收定時器以保持連線活躍並檢測客戶端是否仍在線。
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.session.Close(err)
				return
			}

		case <-c.session.Done():
			c.writeClose()
			return
		}
	}
}

func (c *Client) writeEvent(evt models.ServerEvent) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(evt)
}

// writeClose 送出關閉訊框；因消費太慢被移除時先告知原因
func (c *Client) writeClose() {
	code, text := websocket.CloseNormalClosure, ""
	if errors.Is(c.session.Reason(), models.ErrSlowConsumerDropped) {
		_ = c.writeEvent(models.NewErrorEvent("", "", models.ErrSlowConsumerDropped))
		code, text = CloseSlowConsumer, models.CodeSlowConsumerDropped
	}
	deadline := time.Now().Add(writeWait)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}
