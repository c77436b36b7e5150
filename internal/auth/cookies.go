package auth

import (
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "session_token"

// ShouldUseCookies reports whether the client looks like a browser that
// expects cookie-based auth rather than tokens in the response body
func ShouldUseCookies(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html") ||
		r.Header.Get("X-Use-Cookies") == "true"
}

// SetSessionCookie stores the session token in an HttpOnly cookie
func SetSessionCookie(w http.ResponseWriter, token string, isProduction bool, duration time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(duration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSessionTokenFromCookie reads the session token cookie
func GetSessionTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// ClearSessionCookie removes the session cookie. The token itself stays
// valid until it expires; there is no server-side revocation.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
