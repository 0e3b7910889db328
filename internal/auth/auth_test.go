package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewService(nil, "secret")
	token, err := s.IssueToken("user_01")
	require.NoError(t, err)

	sub, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_01", sub)
}

func TestValidateTokenRejects(t *testing.T) {
	s := NewService(nil, "secret")
	good, err := s.IssueToken("user_01")
	require.NoError(t, err)

	other, err := NewService(nil, "other").IssueToken("user_01")
	require.NoError(t, err)

	expiredSvc := NewService(nil, "secret")
	expiredSvc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := expiredSvc.IssueToken("user_01")
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user_01"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", other},
		{"expired", expired},
		{"no expiry", noExp},
		{"truncated", good[:len(good)-4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := NewService(nil, "secret")
	token, err := s.IssueToken("user_01")
	require.NoError(t, err)

	var seen string
	h := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "user_01", seen)
			} else {
				assert.Empty(t, seen)
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	h := NewHandler(NewService(nil, "secret"))
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing name", `{"email":"a@b.c","password":"longenough"}`},
		{"short password", `{"email":"a@b.c","password":"short","displayName":"A"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
