package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"room-chat/backend/mocks"
	"room-chat/backend/models"
	"room-chat/backend/utils"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

func TestJWTMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	user := &models.User{ID: primitive.NewObjectID(), Name: "alice"}
	identity.EXPECT().Authenticate(gomock.Any(), "good").Return(user, nil).AnyTimes()
	identity.EXPECT().Authenticate(gomock.Any(), "revoked").Return(nil, models.ErrAuthenticationFailed).AnyTimes()

	var seen struct {
		id    primitive.ObjectID
		token string
		user  *models.User
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.id, _ = utils.GetUserIDFromContext(r.Context())
		seen.token, _ = utils.GetTokenFromContext(r.Context())
		seen.user, _ = utils.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := JWTMiddleware(identity)(next)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"revoked token", "Bearer revoked", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, user.ID, seen.id)
	assert.Equal(t, "good", seen.token)
	assert.Same(t, user, seen.user)
}
