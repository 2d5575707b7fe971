package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	tokens := newTestPasetoService(t, 15*time.Minute, 7*24*time.Hour)
	store := newFakeUserStore()

	knownUser, err := store.Create(t.Context(), "Alice", "alice@example.com", "hash")
	require.NoError(t, err)

	validToken, err := tokens.IssueAccessToken(knownUser.ID)
	require.NoError(t, err)

	refreshToken, err := tokens.IssueRefreshToken(knownUser.ID)
	require.NoError(t, err)

	orphanToken, err := tokens.IssueAccessToken(uuid.New())
	require.NoError(t, err)

	expiredTokens := newTestPasetoService(t, -1*time.Second, 7*24*time.Hour)
	expiredToken, err := expiredTokens.IssueAccessToken(knownUser.ID)
	require.NoError(t, err)

	middleware := NewMiddleware(tokens, store)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + validToken, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"refresh token in access slot", "Bearer " + refreshToken, http.StatusUnauthorized},
		{"token for deleted user", "Bearer " + orphanToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID uuid.UUID
			handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = GetUserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newAuthedRequest(tt.header))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, knownUser.ID, gotUserID)
			}
		})
	}
}
