package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipay/lumipay-api/internal/httputil"
)

// stubTokenService returns canned claims or a canned error
type stubTokenService struct {
	claims *TokenClaims
	err    error
}

func (s *stubTokenService) CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error) {
	return "stub-token", nil
}

func (s *stubTokenService) VerifyToken(token string) (*TokenClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRequireAuth_MissingAuth(t *testing.T) {
	m := NewMiddleware(&stubTokenService{})
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeMissingAuth, decodeErrorResponse(t, rec).Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	m := NewMiddleware(&stubTokenService{})
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httputil.CodeInvalidAuthHeader, decodeErrorResponse(t, rec).Code)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	m := NewMiddleware(&stubTokenService{err: ErrExpiredToken})
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeTokenExpired, decodeErrorResponse(t, rec).Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	m := NewMiddleware(&stubTokenService{err: ErrInvalidToken})
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidToken, decodeErrorResponse(t, rec).Code)
}

func TestRequireAuth_NonUUIDSubject(t *testing.T) {
	m := NewMiddleware(&stubTokenService{claims: &TokenClaims{UserID: "not-a-uuid", Email: "a@b.com"}})
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidTokenUserID, decodeErrorResponse(t, rec).Code)
}

func TestRequireAuth_ValidBearerToken(t *testing.T) {
	userID := uuid.New()
	m := NewMiddleware(&stubTokenService{claims: &TokenClaims{
		UserID: userID.String(),
		Email:  "alice@example.com",
	}})

	var gotID uuid.UUID
	var gotEmail string
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
		email, ok := GetUserEmailFromContext(r.Context())
		require.True(t, ok)
		gotEmail = email
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "alice@example.com", gotEmail)
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	userID := uuid.New()
	m := NewMiddleware(&stubTokenService{claims: &TokenClaims{
		UserID: userID.String(),
		Email:  "alice@example.com",
	}})

	called := false
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
