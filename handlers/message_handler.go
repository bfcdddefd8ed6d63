package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"room-chat/backend/models"
)

// GetMessages 回傳聊天室最近的訊息快照，依 (createdAt, id) 遞增
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	room, ok := h.memberRoom(w, r)
	if !ok {
		return
	}
	messages, err := h.store.GetRoomSnapshot(r.Context(), room.ID, queryLimit(r, h.historyLimit, h.historyLimit))
	if err != nil {
		log.Printf("Error getting chat history for room %s: %v", room.ID.Hex(), err)
		sendError(w, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err))
		return
	}
	sendJSON(w, messages, http.StatusOK)
}

// PostMessage 透過 HTTP 發送訊息，寫入後與 WebSocket 發送一樣交給 Broker 扇出
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	room, ok := h.memberRoom(w, r)
	if !ok {
		return
	}
	user, _ := currentUser(r)

	var req models.SendMessageRequest
	if err := h.decode(r, &req); err != nil {
		sendError(w, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" || utf8.RuneCountInString(text) > models.MaxMessageLength {
		sendError(w, fmt.Errorf("%w: message text must be 1-%d characters", models.ErrInvalidRequest, models.MaxMessageLength))
		return
	}

	msg, err := h.broker.Create(r.Context(), room.ID.Hex(), func(ctx context.Context) (*models.Message, error) {
		return h.store.CreateMessage(ctx, room.ID, *user, text)
	})
	if err != nil {
		log.Printf("Error saving message from %s to room %s: %v", user.ID.Hex(), room.ID.Hex(), err)
		sendError(w, err)
		return
	}
	sendJSON(w, msg, http.StatusCreated)
}
