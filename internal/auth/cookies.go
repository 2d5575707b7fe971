package auth

import (
	"net/http"
	"time"
)

// RefreshCookieName is the cookie carrying the refresh token. The access
// token never travels in a cookie; it lives in the response body only.
const RefreshCookieName = "refreshToken"

// SetRefreshCookie stores the refresh token in an HTTP-only, same-site
// strict cookie. Secure is tied to the deployment mode.
func SetRefreshCookie(w http.ResponseWriter, token string, isProduction bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearRefreshCookie removes the refresh token cookie.
func ClearRefreshCookie(w http.ResponseWriter, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// RefreshTokenFromCookie reads the refresh token cookie, returning an
// empty string when it is absent.
func RefreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
