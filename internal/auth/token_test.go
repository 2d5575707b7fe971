package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAccessKey  = []byte("access-key-32-bytes-for-testing!")
	testRefreshKey = []byte("refresh-key-32-bytes-for-testing")
)

func newTestPasetoService(t *testing.T, accessDuration, refreshDuration time.Duration) *PasetoService {
	t.Helper()
	svc, err := NewPasetoService(testAccessKey, testRefreshKey, accessDuration, refreshDuration)
	require.NoError(t, err)
	return svc
}

func TestNewPasetoService_RejectsShortKeys(t *testing.T) {
	_, err := NewPasetoService([]byte("too-short"), testRefreshKey, time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewPasetoService(testAccessKey, []byte("too-short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestPasetoService(t, 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	svc := newTestPasetoService(t, 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	token, err := svc.IssueRefreshToken(userID)
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenKinds_AreNotInterchangeable(t *testing.T) {
	svc := newTestPasetoService(t, 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	accessToken, err := svc.IssueAccessToken(userID)
	require.NoError(t, err)
	refreshToken, err := svc.IssueRefreshToken(userID)
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc := newTestPasetoService(t, -1*time.Second, 7*24*time.Hour)

	token, err := svc.IssueAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	svc := newTestPasetoService(t, 15*time.Minute, 7*24*time.Hour)

	_, err := svc.VerifyAccessToken("v4.local.not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
