// Package handlers implements the REST API: accounts, groups, rooms, membership and message history.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"room-chat/backend/broker"
	"room-chat/backend/models"
	"room-chat/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultRoomListLimit = 50

// Handler 持有 HTTP API 共用的元件
type Handler struct {
	store        Store
	tokens       Tokens
	broker       *broker.Broker
	validate     *validator.Validate
	historyLimit int64
	sessions     SessionCloser
}

// New 創建並返回一個新的 Handler。historyLimit 是訊息快照的最大筆數。
func New(store Store, tokens Tokens, b *broker.Broker, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &Handler{
		store:        store,
		tokens:       tokens,
		broker:       b,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		historyLimit: int64(historyLimit),
	}
}

// CloseSessionsOnLogout 登出時一併關閉該使用者的 WebSocket 連線
func (h *Handler) CloseSessionsOnLogout(sessions SessionCloser) {
	h.sessions = sessions
}

// Routes 註冊所有 API 路由。authMW 保護需要登入的路由。
func (h *Handler) Routes(router *mux.Router, authMW mux.MiddlewareFunc) {
	router.HandleFunc("/register", h.RegisterUser).Methods("POST")
	router.HandleFunc("/login", h.LoginUser).Methods("POST")

	protected := router.NewRoute().Subrouter()
	protected.Use(authMW)
	protected.HandleFunc("/logout", h.LogoutUser).Methods("POST")
	protected.HandleFunc("/me", h.GetMe).Methods("GET")
	protected.HandleFunc("/me/rooms", h.GetMyRooms).Methods("GET")
	protected.HandleFunc("/users", h.ListUsers).Methods("GET")
	protected.HandleFunc("/groups", h.ListGroups).Methods("GET")
	protected.HandleFunc("/groups", h.CreateGroup).Methods("POST")
	protected.HandleFunc("/rooms", h.ListRooms).Methods("GET")
	protected.HandleFunc("/rooms", h.CreateRoom).Methods("POST")
	protected.HandleFunc("/rooms/{id}", h.GetRoom).Methods("GET")
	protected.HandleFunc("/rooms/{id}/join", h.JoinRoom).Methods("POST")
	protected.HandleFunc("/rooms/{id}/leave", h.LeaveRoom).Methods("POST")
	protected.HandleFunc("/rooms/{id}/members", h.GetRoomMembers).Methods("GET")
	protected.HandleFunc("/rooms/{id}/messages", h.GetMessages).Methods("GET")
	protected.HandleFunc("/rooms/{id}/messages", h.PostMessage).Methods("POST")
}

// sendJSON 統一發送 JSON 響應
func sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// sendJSONError 統一發送 JSON 格式錯誤響應
func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	sendJSONErrorCode(w, message, "", statusCode)
}

func sendJSONErrorCode(w http.ResponseWriter, message, code string, statusCode int) {
	var errorResponse models.ErrorResponse
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	errorResponse.Message = message
	errorResponse.Code = code
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("Failed to write error response: %v", err)
	}
}

// sendError 依錯誤種類決定狀態碼；未知錯誤只記錄在日誌，不回傳細節
func sendError(w http.ResponseWriter, err error) {
	code := models.ErrorCode(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrAuthenticationFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrNotAMember):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, models.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	message := err.Error()
	if code == models.CodeInternal {
		log.Printf("Internal error: %v", err)
		message = "Internal server error"
	}
	sendJSONErrorCode(w, message, code, status)
}

// decode 解析並驗證請求體
func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	if err := h.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	return nil
}

// currentUser 取得 middleware 放入 context 的使用者
func currentUser(r *http.Request) (*models.User, bool) {
	return utils.GetUserFromContext(r.Context())
}

// roomFromPath 解析路徑中的聊天室 ID 並確認聊天室存在
func (h *Handler) roomFromPath(r *http.Request) (*models.Room, error) {
	roomID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid room ID format", models.ErrInvalidRequest)
	}
	room, err := h.store.FindRoomByID(r.Context(), roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, models.ErrRoomNotFound
	}
	return room, nil
}

// queryLimit 讀取 limit 查詢參數，限制在 (0, max]
func queryLimit(r *http.Request, def, max int64) int64 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
