package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRefreshCookie_Attributes(t *testing.T) {
	rec := httptest.NewRecorder()
	SetRefreshCookie(rec, "token-value", true, 7*24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	assert.Equal(t, RefreshCookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestSetRefreshCookie_NotSecureInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	SetRefreshCookie(rec, "token-value", false, time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.False(t, cookies[0].Secure)
}

func TestClearRefreshCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearRefreshCookie(rec, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, RefreshCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRefreshTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	assert.Empty(t, RefreshTokenFromCookie(req))

	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "token-value"})
	assert.Equal(t, "token-value", RefreshTokenFromCookie(req))
}
