package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldUseCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	assert.False(t, ShouldUseCookies(req))

	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	assert.True(t, ShouldUseCookies(req))

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Use-Cookies", "true")
	assert.True(t, ShouldUseCookies(req))
}

func TestSessionCookieRoundtrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "token-value", true, time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "session_token", cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	req.AddCookie(cookie)
	token, err := GetSessionTokenFromCookie(req)
	require.NoError(t, err)
	assert.Equal(t, "token-value", token)
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.0.2.10:54321"
	assert.Equal(t, "192.0.2.10", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(req))

	// Forwarded-for wins and only the first hop counts
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.7")
	assert.Equal(t, "203.0.113.5", getClientIP(req))
}
