package utils

import (
	"context"
	"errors"
	"time"

	"room-chat/backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDKey 是儲存在 context 中的使用者 ID 的鍵
type contextKey string

const (
	UserIDKey contextKey = "userID"
	TokenKey  contextKey = "token"
	UserKey   contextKey = "user"
)

// TokenClaims 是從 JWT 解析出來的內容
type TokenClaims struct {
	UserID    primitive.ObjectID
	Name      string
	TokenID   string // jti，用於撤銷
	ExpiresAt time.Time
}

// GetUserIDFromContext 從 context 中提取使用者 ID
func GetUserIDFromContext(ctx context.Context) (primitive.ObjectID, error) {
	userID, ok := ctx.Value(UserIDKey).(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	return userID, nil
}

// GetTokenFromContext 從 context 中提取原始 token
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

// GetUserFromContext 取得 middleware 放入的使用者
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// ParseToken 驗證簽章與過期時間並取出 claims
func ParseToken(tokenString string, jwtSecret string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userIDStr, ok := claims["userId"].(string)
	if !ok {
		return nil, errors.New("user ID not found in token claims")
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return nil, errors.New("invalid user ID format in token")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("expiration not found in token claims")
	}

	name, _ := claims["name"].(string)
	jti, _ := claims["jti"].(string)
	return &TokenClaims{
		UserID:    userID,
		Name:      name,
		TokenID:   jti,
		ExpiresAt: exp.Time,
	}, nil
}

// GetUserIDFromToken 從 JWT token 中提取使用者 ID
func GetUserIDFromToken(tokenString string, jwtSecret string) (primitive.ObjectID, error) {
	claims, err := ParseToken(tokenString, jwtSecret)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return claims.UserID, nil
}

// GenerateJWT 為用戶生成 JWT Token
func GenerateJWT(userID primitive.ObjectID, name string, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID.Hex(), // 將 ObjectID 轉換為 Hex 字串儲存
		"name":   name,
		"jti":    uuid.NewString(),
		"exp":    now.Add(ttl).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return tokenString, nil
}
