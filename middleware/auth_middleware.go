// backend/middleware/auth_middleware.go
package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"room-chat/backend/auth"
	"room-chat/backend/models"
	"room-chat/backend/utils"
)

// JWTMiddleware 驗證 Bearer token，並將使用者、使用者 ID 與原始 token 放入 context
func JWTMiddleware(identity auth.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			// Authorization: Bearer <token>
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				unauthorized(w, "Invalid Authorization header format")
				return
			}
			tokenString := parts[1]

			user, err := identity.Authenticate(r.Context(), tokenString)
			if err != nil || user == nil {
				log.Printf("Rejected request to %s: %v", r.URL.Path, err)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), utils.UserIDKey, user.ID)
			ctx = context.WithValue(ctx, utils.TokenKey, tokenString)
			ctx = context.WithValue(ctx, utils.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Message: message, Code: models.CodeAuthenticationFailed})
}
