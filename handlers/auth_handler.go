package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"room-chat/backend/database"
	"room-chat/backend/models"
	"room-chat/backend/utils"

	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt" // 用於密碼哈希
)

// RegisterUser 處理使用者註冊請求，成功後直接回傳登入 token
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := h.decode(r, &registerReq); err != nil {
		log.Printf("Invalid register request: %v", err)
		sendError(w, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(registerReq.Email))

	// 先檢查 Email，如果存在則直接返回
	existing, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		log.Printf("Error checking existing email: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		sendJSONError(w, "Email already registered", http.StatusConflict)
		return
	}

	// 哈希密碼
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerReq.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.store.InsertUser(r.Context(), models.User{
		Email:    email,
		Name:     strings.TrimSpace(registerReq.Name),
		Password: string(hashedPassword),
	})
	if errors.Is(err, database.ErrEmailTaken) {
		// 同時註冊的競爭，唯一索引擋下
		sendJSONError(w, "Email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("Error inserting user: %v", err)
		sendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		log.Printf("Error issuing token for %s: %v", user.ID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.Printf("User registered successfully: %s", user.ID.Hex())
	sendJSON(w, models.AuthPayload{Token: token, User: user.Public()}, http.StatusCreated)
}

// LoginUser 處理使用者登入請求
func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var credentials models.LoginRequest
	if err := h.decode(r, &credentials); err != nil {
		sendError(w, err)
		return
	}

	// 透過 Email 尋找使用者
	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(credentials.Email)))
	if err != nil {
		log.Printf("Error finding user by email: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		sendJSONErrorCode(w, "Invalid credentials", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}

	// 比較哈希後的密碼
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(credentials.Password)); err != nil {
		sendJSONErrorCode(w, "Invalid credentials", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		log.Printf("Error issuing token for %s: %v", user.ID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// 登入成功
	log.Printf("User logged in successfully: %s", user.Email)
	sendJSON(w, models.AuthPayload{Token: token, User: user.Public()}, http.StatusOK)
}

// LogoutUser 撤銷目前使用的 token
func (h *Handler) LogoutUser(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.GetTokenFromContext(r.Context())
	if !ok {
		sendJSONErrorCode(w, "Unauthorized", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}
	if err := h.tokens.Revoke(r.Context(), token); err != nil {
		log.Printf("Error revoking token: %v", err)
		sendError(w, err)
		return
	}
	if user, ok := currentUser(r); ok && h.sessions != nil {
		if n := h.sessions.CloseUser(user.ID); n > 0 {
			log.Printf("Closed %d WebSocket sessions for user %s after logout", n, user.ID.Hex())
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMe 回傳目前登入的使用者
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		sendJSONErrorCode(w, "Unauthorized", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}
	sendJSON(w, user.Public(), http.StatusOK)
}

// ListUsers 列出使用者的公開資料，依名稱排序
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), queryLimit(r, 100, 500))
	if err != nil {
		log.Printf("Error listing users: %v", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, lo.Map(users, func(u models.User, _ int) models.User { return u.Public() }), http.StatusOK)
}

// GetMyRooms 回傳使用者加入的聊天室，最近活躍的在前
func (h *Handler) GetMyRooms(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		sendJSONErrorCode(w, "Unauthorized", models.CodeAuthenticationFailed, http.StatusUnauthorized)
		return
	}
	rooms, err := h.store.GetUserRooms(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error getting rooms for user %s: %v", user.ID.Hex(), err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, rooms, http.StatusOK)
}
