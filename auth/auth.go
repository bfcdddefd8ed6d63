// Package auth is the identity check used at connection handshake and by the HTTP middleware.
package auth

//go:generate go run go.uber.org/mock/mockgen -source=auth.go -destination=../mocks/mock_auth.go -package=mocks

import (
	"context"
	"fmt"
	"log"
	"time"

	"room-chat/backend/models"
	"room-chat/backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserLookup 依 ID 取得使用者，找不到時回傳 (nil, nil)
type UserLookup interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Revocations 記錄已登出的 token（以 jti 為鍵）
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Identity 驗證連線時帶的 token
type Identity interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticator 以 JWT 驗證 token，並確認使用者仍存在、token 未被撤銷
type Authenticator struct {
	secret  string
	ttl     time.Duration
	users   UserLookup
	revoked Revocations
}

// NewAuthenticator 創建並返回一個新的 Authenticator，revoked 為 nil 時使用記憶體清單
func NewAuthenticator(secret string, ttl time.Duration, users UserLookup, revoked Revocations) *Authenticator {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	return &Authenticator{secret: secret, ttl: ttl, users: users, revoked: revoked}
}

// Issue 為使用者簽發 token
func (a *Authenticator) Issue(user models.User) (string, error) {
	return utils.GenerateJWT(user.ID, user.Name, a.secret, a.ttl)
}

// Authenticate 所有失敗都回傳包裝過的 models.ErrAuthenticationFailed，不會降級為匿名
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", models.ErrAuthenticationFailed)
	}
	claims, err := utils.ParseToken(token, a.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuthenticationFailed, err)
	}

	if claims.TokenID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			log.Printf("Error checking token revocation for user %s: %v", claims.UserID.Hex(), err)
			return nil, fmt.Errorf("%w: revocation check failed", models.ErrAuthenticationFailed)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", models.ErrAuthenticationFailed)
		}
	}

	user, err := a.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		log.Printf("Error loading user %s during authentication: %v", claims.UserID.Hex(), err)
		return nil, fmt.Errorf("%w: user lookup failed", models.ErrAuthenticationFailed)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", models.ErrAuthenticationFailed)
	}
	return user, nil
}

// Revoke 撤銷 token 直到它原本的過期時間
func (a *Authenticator) Revoke(ctx context.Context, token string) error {
	claims, err := utils.ParseToken(token, a.secret)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrAuthenticationFailed, err)
	}
	if claims.TokenID == "" {
		return fmt.Errorf("%w: token has no id", models.ErrInvalidRequest)
	}
	return a.revoked.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}
