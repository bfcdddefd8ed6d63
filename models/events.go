package models

// RequestType 用戶端送進來的請求類型
type RequestType string

const (
	RequestSubscribe   RequestType = "subscribe"
	RequestUnsubscribe RequestType = "unsubscribe"
	RequestSend        RequestType = "send"
)

// EventType 伺服器推送給用戶端的事件類型
type EventType string

const (
	EventMessageAdded EventType = "messageAdded"
	EventMemberJoined EventType = "memberJoined"
	EventMemberLeft   EventType = "memberLeft"
	EventSubscribed   EventType = "subscribed"
	EventUnsubscribed EventType = "unsubscribed"
	EventSent         EventType = "sent"
	EventError        EventType = "error"
)

// ClientRequest 為 WebSocket 上行的請求框架
type ClientRequest struct {
	ID     string      `json:"id,omitempty" validate:"max=64"`
	Type   RequestType `json:"type" validate:"required,oneof=subscribe unsubscribe send"`
	RoomID string      `json:"roomId" validate:"required,len=24,hexadecimal"`
	Text   string      `json:"text,omitempty" validate:"required_if=Type send,max=2000"`
}

// ErrorBody 為 error 事件的內容
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ServerEvent 為 WebSocket 下行的推送框架
type ServerEvent struct {
	Type    EventType  `json:"type"`
	ID      string     `json:"id,omitempty"` // 對應請求的 ID
	RoomID  string     `json:"roomId,omitempty"`
	Message *Message   `json:"message,omitempty"`
	User    *User      `json:"user,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// NewMessageAdded 建立 messageAdded 事件
func NewMessageAdded(msg Message) ServerEvent {
	return ServerEvent{Type: EventMessageAdded, RoomID: msg.RoomID.Hex(), Message: &msg}
}

// NewErrorEvent 建立 error 事件
func NewErrorEvent(requestID, roomID string, err error) ServerEvent {
	return ServerEvent{Type: EventError, ID: requestID, RoomID: roomID, Error: NewErrorBody(err)}
}
