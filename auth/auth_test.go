package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"room-chat/backend/mocks"
	"room-chat/backend/models"
	"room-chat/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

const secret = "test-secret"

func TestAuthenticate(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserLookup(ctrl)
	a := NewAuthenticator(secret, time.Hour, users, nil)

	user := models.User{ID: primitive.NewObjectID(), Name: "alice"}
	token, err := a.Issue(user)
	require.NoError(t, err)

	// Given the user exists
	users.EXPECT().GetUserByID(gomock.Any(), user.ID).Return(&user, nil)

	// When the token is authenticated
	got, err := a.Authenticate(context.Background(), token)

	// Then the stored user is returned
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticateRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserLookup(ctrl)
	a := NewAuthenticator(secret, time.Hour, users, nil)
	userID := primitive.NewObjectID()

	expired, err := utils.GenerateJWT(userID, "e", secret, -time.Minute)
	require.NoError(t, err)
	forged, err := utils.GenerateJWT(userID, "f", "other-secret", time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing": "",
		"garbage": "not-a-jwt",
		"expired": expired,
		"forged":  forged,
	} {
		t.Run(name, func(t *testing.T) {
			user, err := a.Authenticate(context.Background(), token)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
		})
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserLookup(ctrl)
	a := NewAuthenticator(secret, time.Hour, users, nil)

	token, err := a.Issue(models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	users.EXPECT().GetUserByID(gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	users.EXPECT().GetUserByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
	_, err = a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserLookup(ctrl)
	a := NewAuthenticator(secret, time.Hour, users, NewMemoryRevocations())

	user := models.User{ID: primitive.NewObjectID()}
	token, err := a.Issue(user)
	require.NoError(t, err)
	other, err := a.Issue(user)
	require.NoError(t, err)

	require.NoError(t, a.Revoke(context.Background(), token))

	_, err = a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	// 其他 token 不受影響
	users.EXPECT().GetUserByID(gomock.Any(), user.ID).Return(&user, nil)
	_, err = a.Authenticate(context.Background(), other)
	assert.NoError(t, err)
}

func TestRevocationStoreFailureFailsClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserLookup(ctrl)
	revoked := mocks.NewMockRevocations(ctrl)
	a := NewAuthenticator(secret, time.Hour, users, revoked)

	token, err := a.Issue(models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, errors.New("redis unavailable"))
	_, err = a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
}

func TestMemoryRevocationsExpire(t *testing.T) {
	m := NewMemoryRevocations()
	ctx := context.Background()

	require.NoError(t, m.Revoke(ctx, "old", time.Now().Add(-time.Second)))
	require.NoError(t, m.Revoke(ctx, "live", time.Now().Add(time.Hour)))

	revoked, _ := m.IsRevoked(ctx, "old")
	assert.False(t, revoked)
	revoked, _ = m.IsRevoked(ctx, "live")
	assert.True(t, revoked)
}
