// backend/utils/utils_test.go
package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert" // 引入 testify/assert
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateJWT(t *testing.T) {
	// 準備測試資料
	userID := primitive.NewObjectID()
	name := "testuser"
	secret := "test-secret"

	// 執行要測試的函式
	tokenString, err := GenerateJWT(userID, name, secret, 24*time.Hour)

	// 1. 斷言錯誤為 nil
	assert.NoError(t, err, "生成 JWT 不應該返回錯誤")

	// 2. 斷言 token 字串不為空
	assert.NotEmpty(t, tokenString, "生成的 JWT token 不應該是空的")

	// 3. 解析並驗證 token 內容
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 驗證簽名演算法是否正確
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		assert.True(t, ok, "非預期的簽名演算法")
		return []byte(secret), nil
	})

	// 斷言 token 解析成功且有效
	assert.NoError(t, err, "解析 JWT token 不應該返回錯誤")
	assert.True(t, token.Valid, "JWT token 應該是有效的")

	// 4. 驗證 token 的聲明 (Claims)
	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok, "無法讀取 JWT claims")

	assert.Equal(t, userID.Hex(), claims["userId"], "userId claim 應該與原始 userID 相同")
	assert.Equal(t, name, claims["name"], "name claim 應該與原始名稱相同")
	assert.NotEmpty(t, claims["jti"], "每個 token 都應該有 jti")

	// 驗證過期時間 (exp) 是否在未來
	exp, ok := claims["exp"].(float64)
	assert.True(t, ok, "exp claim 格式錯誤")
	assert.Greater(t, int64(exp), time.Now().Unix(), "過期時間應該在未來")
}

func TestParseToken(t *testing.T) {
	userID := primitive.NewObjectID()
	tokenString, err := GenerateJWT(userID, "alice", "s3cret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tokenString, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Name)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)

	_, err = ParseToken(tokenString, "wrong-secret")
	assert.Error(t, err, "簽章錯誤應該失敗")
}

func TestParseExpiredToken(t *testing.T) {
	tokenString, err := GenerateJWT(primitive.NewObjectID(), "bob", "s3cret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, "s3cret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGetUserIDFromContext(t *testing.T) {
	_, err := GetUserIDFromContext(context.Background())
	assert.Error(t, err)

	userID := primitive.NewObjectID()
	ctx := context.WithValue(context.Background(), UserIDKey, userID)
	got, err := GetUserIDFromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, userID, got)
}
