package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipay/lumipay-api/internal/auth"
	"github.com/lumipay/lumipay-api/internal/httputil"
	"github.com/lumipay/lumipay-api/internal/logging"
)

func authenticatedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), auth.UserIDContextKey, senderID)
	ctx = context.WithValue(ctx, auth.UserEmailContextKey, "alice@example.com")
	return req.WithContext(ctx)
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestTransferHandler_Unauthenticated(t *testing.T) {
	service, _ := newTestService(t)
	handler := NewHandler(service, logging.NewLogger(true))

	req := httptest.NewRequest(http.MethodPost, "/transfer", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Transfer(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeMissingAuth, decodeErrorResponse(t, rec).Code)
}

func TestTransferHandler_InvalidBody(t *testing.T) {
	service, _ := newTestService(t)
	handler := NewHandler(service, logging.NewLogger(true))

	req := authenticatedRequest(http.MethodPost, "/transfer", `{"amount": "abc"}`)
	rec := httptest.NewRecorder()
	handler.Transfer(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidRequestBody, decodeErrorResponse(t, rec).Code)
}

func TestTransferHandler_InvalidAmount(t *testing.T) {
	service, _ := newTestService(t)
	handler := NewHandler(service, logging.NewLogger(true))

	req := authenticatedRequest(http.MethodPost, "/transfer", `{"recipient": "bob@example.com", "amount": "-5.00"}`)
	rec := httptest.NewRecorder()
	handler.Transfer(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidAmount, decodeErrorResponse(t, rec).Code)
}

func TestTransferHandler_RecipientNotFound(t *testing.T) {
	service, mock := newTestService(t)
	handler := NewHandler(service, logging.NewLogger(true))

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnError(sql.ErrNoRows)

	req := authenticatedRequest(http.MethodPost, "/transfer", `{"recipient": "nobody@example.com", "amount": "5.00"}`)
	rec := httptest.NewRecorder()
	handler.Transfer(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeRecipientNotFound, decodeErrorResponse(t, rec).Code)
}

func TestUserDataHandler_Unauthenticated(t *testing.T) {
	service, _ := newTestService(t)
	handler := NewHandler(service, logging.NewLogger(true))

	req := httptest.NewRequest(http.MethodGet, "/user/data", nil)
	rec := httptest.NewRecorder()
	handler.UserData(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeMissingAuth, decodeErrorResponse(t, rec).Code)
}

func TestUserDataHandler_MissingUserMapsToUnauthorized(t *testing.T) {
	service, mock := newTestService(t)
	handler := NewHandler(service, logging.NewLogger(true))

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnError(sql.ErrNoRows)

	req := authenticatedRequest(http.MethodGet, "/user/data", "")
	rec := httptest.NewRecorder()
	handler.UserData(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidToken, decodeErrorResponse(t, rec).Code)
}
