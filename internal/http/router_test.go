package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savora-app/savora-api/internal/auth"
	"github.com/savora-app/savora-api/internal/config"
	"github.com/savora-app/savora-api/internal/ingredient"
	"github.com/savora-app/savora-api/internal/logging"
	"github.com/savora-app/savora-api/internal/recipe"
	"github.com/savora-app/savora-api/internal/user"
)

// singleUserStore resolves exactly one known user. Routes under test never
// create accounts, so the write paths just error.
type singleUserStore struct {
	user *user.User
}

func (s *singleUserStore) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	return nil, errors.New("unexpected call")
}

func (s *singleUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (s *singleUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (s *singleUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, user.ErrNotFound
}

func (s *singleUserStore) SetRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	return nil
}

func (s *singleUserStore) ClearRefreshTokenByValue(ctx context.Context, token string) error {
	return nil
}

func (s *singleUserStore) ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, []uuid.UUID, error) {
	return false, nil, user.ErrNotFound
}

func newTestRouter(t *testing.T) (http.Handler, *auth.PasetoService, uuid.UUID) {
	t.Helper()

	tokens, err := auth.NewPasetoService(
		[]byte("access-key-32-bytes-for-testing!"),
		[]byte("refresh-key-32-bytes-for-testing"),
		time.Minute,
		time.Hour,
	)
	require.NoError(t, err)

	userID := uuid.New()
	users := &singleUserStore{user: &user.User{ID: userID, Name: "Alice", Email: "alice@example.com"}}

	logger := logging.NewLogger(true)
	authService := auth.NewService(users, tokens, logger)
	authHandler := auth.NewHandler(authService, nil, logger, false, time.Hour)
	authMiddleware := auth.NewMiddleware(tokens, users)

	cfg := &config.Config{Server: config.ServerConfig{Env: "prod"}}

	router := NewRouter(
		cfg,
		authHandler,
		recipe.NewHandler(nil, logger),
		ingredient.NewHandler(nil, logger),
		authMiddleware,
		logger,
	)
	return router, tokens, userID
}

func TestRouterLogoutRequiresAuth(t *testing.T) {
	router, tokens, userID := newTestRouter(t)

	// No bearer token: the session routes fail closed before the handler.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	accessToken, err := tokens.IssueAccessToken(userID)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSessionRoutesRequireAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/auth/logout"},
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/auth/favorites/" + uuid.NewString()},
		{http.MethodPost, "/recipes/" + uuid.NewString() + "/like"},
		{http.MethodPost, "/recipes/" + uuid.NewString() + "/comment"},
		{http.MethodDelete, "/recipes/" + uuid.NewString()},
		{http.MethodPost, "/ingredients/"},
	}
	for _, route := range routes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestRouterHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
