package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"room-chat/backend/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListGroups 回傳所有分類
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		log.Printf("Error listing groups: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, groups, http.StatusOK)
}

// CreateGroup 新增分類
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var group models.Group
	if err := h.decode(r, &group); err != nil {
		sendError(w, err)
		return
	}
	group.ID = primitive.NilObjectID

	created, err := h.store.InsertGroup(r.Context(), group)
	if err != nil {
		log.Printf("Error inserting group: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, created, http.StatusCreated)
}

// ListRooms 列出聊天室，最近活躍的在前。可用 groupId、tag、q 篩選。
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.RoomFilter{
		Tag:     strings.ToLower(strings.TrimSpace(q.Get("tag"))),
		Keyword: strings.TrimSpace(q.Get("q")),
	}
	if raw := q.Get("groupId"); raw != "" {
		groupID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			sendJSONErrorCode(w, "Invalid group ID format", models.CodeInvalidRequest, http.StatusBadRequest)
			return
		}
		filter.GroupID = groupID
	}

	rooms, err := h.store.ListRooms(r.Context(), filter, queryLimit(r, defaultRoomListLimit, 200))
	if err != nil {
		log.Printf("Error listing rooms: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, rooms, http.StatusOK)
}

// CreateRoom 建立聊天室，建立者自動成為成員
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		sendJSONErrorCode(w, "Unauthorized", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}

	var req models.CreateRoomRequest
	if err := h.decode(r, &req); err != nil {
		sendError(w, err)
		return
	}
	groupID, _ := primitive.ObjectIDFromHex(req.GroupID)
	group, err := h.store.FindGroupByID(r.Context(), groupID)
	if err != nil {
		log.Printf("Error finding group %s: %v", req.GroupID, err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if group == nil {
		sendJSONErrorCode(w, "Group not found", models.CodeInvalidRequest, http.StatusBadRequest)
		return
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	room, err := h.store.InsertRoom(r.Context(), models.Room{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		GroupID:      groupID,
		Tags:         normalizeTags(req.Tags),
		LastActivity: now,
		CreatedAt:    now,
	})
	if err != nil {
		log.Printf("Error inserting room: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if _, err := h.store.JoinRoom(r.Context(), user.ID, room.ID); err != nil {
		log.Printf("Error adding creator %s to room %s: %v", user.ID.Hex(), room.ID.Hex(), err)
	}

	log.Printf("Room %s created by %s", room.ID.Hex(), user.ID.Hex())
	sendJSON(w, room, http.StatusCreated)
}

// normalizeTags 轉小寫、去除空白與重複
func normalizeTags(tags []string) []string {
	out := lo.Uniq(lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	}))
	if out == nil {
		return []string{}
	}
	return out
}

// GetRoom 回傳聊天室資料
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomFromPath(r)
	if err != nil {
		sendError(w, err)
		return
	}
	count, err := h.store.CountMessages(r.Context(), room.ID)
	if err != nil {
		log.Printf("Error counting messages of room %s: %v", room.ID.Hex(), err)
		sendError(w, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err))
		return
	}
	sendJSON(w, models.RoomDetail{Room: *room, MessageCount: count}, http.StatusOK)
}

// JoinRoom 加入聊天室，第一次加入時通知聊天室的訂閱者
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		sendJSONErrorCode(w, "Unauthorized", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}
	room, err := h.roomFromPath(r)
	if err != nil {
		sendError(w, err)
		return
	}

	created, err := h.store.JoinRoom(r.Context(), user.ID, room.ID)
	if err != nil {
		log.Printf("Error joining room %s for user %s: %v", room.ID.Hex(), user.ID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if created {
		h.broker.MemberJoined(room.ID.Hex(), *user)
	}
	sendJSON(w, map[string]bool{"joined": created}, http.StatusOK)
}

// LeaveRoom 離開聊天室。已經開著的訂閱不受影響，之後的訂閱與發送會被拒絕。
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		sendJSONErrorCode(w, "Unauthorized", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}
	room, err := h.roomFromPath(r)
	if err != nil {
		sendError(w, err)
		return
	}

	removed, err := h.store.LeaveRoom(r.Context(), user.ID, room.ID)
	if err != nil {
		log.Printf("Error leaving room %s for user %s: %v", room.ID.Hex(), user.ID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if removed {
		h.broker.MemberLeft(room.ID.Hex(), *user)
	}
	// 返回成功狀態
	sendJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// GetRoomMembers 回傳聊天室成員，只有成員可以查看
func (h *Handler) GetRoomMembers(w http.ResponseWriter, r *http.Request) {
	room, ok := h.memberRoom(w, r)
	if !ok {
		return
	}
	members, err := h.store.GetRoomMembers(r.Context(), room.ID)
	if err != nil {
		log.Printf("Error getting members of room %s: %v", room.ID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, lo.Map(members, func(u models.User, _ int) models.User { return u.Public() }), http.StatusOK)
}

// memberRoom 取得路徑中的聊天室並確認目前使用者是成員，失敗時已寫入回應
func (h *Handler) memberRoom(w http.ResponseWriter, r *http.Request) (*models.Room, bool) {
	user, ok := currentUser(r)
	if !ok {
		sendJSONErrorCode(w, "Unauthorized", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return nil, false
	}
	room, err := h.roomFromPath(r)
	if err != nil {
		sendError(w, err)
		return nil, false
	}
	member, err := h.store.IsMember(r.Context(), user.ID, room.ID)
	if err != nil {
		log.Printf("Error checking membership of %s in room %s: %v", user.ID.Hex(), room.ID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	if !member {
		sendError(w, models.ErrNotAMember)
		return nil, false
	}
	return room, true
}
