package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savora-app/savora-api/internal/logging"
	"github.com/savora-app/savora-api/internal/user"
)

// -------- test fakes --------

type fakeUserStore struct {
	usersByID    map[uuid.UUID]*user.User
	usersByEmail map[string]*user.User
	createErr    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		usersByID:    make(map[uuid.UUID]*user.User),
		usersByEmail: make(map[string]*user.User),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.usersByEmail[email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Favorites:    []uuid.UUID{},
	}
	f.usersByID[u.ID] = u
	f.usersByEmail[email] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := f.usersByEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.usersByEmail[email]
	return ok, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.usersByID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) SetRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	u, ok := f.usersByID[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.RefreshToken = &token
	return nil
}

func (f *fakeUserStore) ClearRefreshTokenByValue(ctx context.Context, token string) error {
	for _, u := range f.usersByID {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			u.RefreshToken = nil
		}
	}
	return nil
}

func (f *fakeUserStore) ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, []uuid.UUID, error) {
	u, ok := f.usersByID[userID]
	if !ok {
		return false, nil, user.ErrNotFound
	}
	for i, id := range u.Favorites {
		if id == recipeID {
			u.Favorites = append(u.Favorites[:i], u.Favorites[i+1:]...)
			return false, u.Favorites, nil
		}
	}
	u.Favorites = append(u.Favorites, recipeID)
	return true, u.Favorites, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	tokens := newTestPasetoService(t, 15*time.Minute, 7*24*time.Hour)
	return NewService(store, tokens, logging.NewLogger(true)), store
}

// -------- tests --------

func TestRegister_Success(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "Alice", session.User.Name)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	// Refresh token is persisted as the single active session
	stored := store.usersByEmail["alice@example.com"]
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, session.RefreshToken, *stored.RefreshToken)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"empty name", "  ", "a@example.com", "password123", ErrNameRequired},
		{"empty email", "Alice", "", "password123", ErrEmailRequired},
		{"bad email", "Alice", "not-an-email", "password123", ErrInvalidEmailFormat},
		{"empty password", "Alice", "a@example.com", "", ErrPasswordRequired},
		{"short password", "Alice", "a@example.com", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Impostor", "alice@example.com", "password456")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.NotEmpty(t, session.AccessToken)
}

func TestLogin_UniformErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody@example.com", "password123")
	_, wrongErr := svc.Login(ctx, "alice@example.com", "wrong-password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
}

func TestLogin_OverwritesPreviousRefreshToken(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	second, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	stored := store.usersByEmail["alice@example.com"]
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, second.RefreshToken, *stored.RefreshToken)

	// The rotated-out token no longer refreshes
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_Success(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	accessToken, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
}

func TestRefresh_RejectsGarbageAndEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_ClearsSessionAndUnknownTokenNoOps(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	// Foreign token leaves the session alone
	svc.Logout(ctx, "some-other-token")
	assert.NotNil(t, store.usersByEmail["alice@example.com"].RefreshToken)

	svc.Logout(ctx, session.RefreshToken)
	assert.Nil(t, store.usersByEmail["alice@example.com"].RefreshToken)

	// Refresh no longer works after logout
	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToggleFavorite_Involution(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	recipeID := uuid.New()

	added, favorites, err := svc.ToggleFavorite(ctx, session.User.ID, recipeID)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Contains(t, favorites, recipeID)

	added, favorites, err = svc.ToggleFavorite(ctx, session.User.ID, recipeID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.NotContains(t, favorites, recipeID)
}

func TestPasswordHashing_RoundTripAndMismatch(t *testing.T) {
	svc, _ := newTestService(t)

	hash, err := svc.hashPassword("password123")
	require.NoError(t, err)

	assert.True(t, svc.verifyPassword(hash, "password123"))
	assert.False(t, svc.verifyPassword(hash, "password124"))
	assert.False(t, svc.verifyPassword("not-a-hash", "password123"))
}
