package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lumipay/lumipay-api/internal/auth"
	"github.com/lumipay/lumipay-api/internal/httputil"
	"github.com/lumipay/lumipay-api/internal/logging"
	"github.com/lumipay/lumipay-api/internal/user"
)

// Handler contains HTTP handlers for the ledger endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// TransferRequest represents the transfer request body. Amount accepts a
// JSON number or string; decimal.Decimal parses both without going through
// a float.
type TransferRequest struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransferResponse represents a successful transfer
type TransferResponse struct {
	Message string          `json:"message"`
	Result  *TransferResult `json:"result"`
}

// UserDataResponse bundles the user with their recent transactions
type UserDataResponse struct {
	User         *user.User     `json:"user"`
	Transactions []*Transaction `json:"transactions"`
}

// UserData returns the authenticated user's profile and recent transactions
// @Summary      Get user data
// @Description  Return the authenticated user's profile, balance, and the 10 most recent transactions
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserDataResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /user/data [get]
func (h *Handler) UserData(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	data, err := h.service.UserData(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Token was valid but the account is gone
			logger.Warn("user data requested for missing user", "user_id", userID)
			httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to fetch user data", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to fetch user data", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, UserDataResponse{
		User:         data.User,
		Transactions: data.Transactions,
	}, http.StatusOK)
}

// Transfer moves money from the authenticated user to a recipient
// @Summary      Transfer money
// @Description  Transfer an amount from the authenticated user to the recipient identified by email
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TransferRequest true "Recipient and amount"
// @Success      200 {object} TransferResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid amount, unknown recipient, or insufficient funds"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /transfer [post]
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid transfer request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	result, err := h.service.Transfer(r.Context(), userID, req.Recipient, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			logger.Warn("transfer failed: invalid amount")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidAmount, http.StatusBadRequest)
		case errors.Is(err, ErrRecipientNotFound):
			logger.Warn("transfer failed: recipient not found")
			httputil.RespondErrorWithCode(w, "recipient not found", httputil.CodeRecipientNotFound, http.StatusBadRequest)
		case errors.Is(err, ErrSelfTransfer):
			logger.Warn("transfer failed: self transfer")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeSelfTransfer, http.StatusBadRequest)
		case errors.Is(err, ErrInsufficientFunds), errors.Is(err, user.ErrInsufficientFunds):
			logger.Warn("transfer failed: insufficient funds")
			httputil.RespondErrorWithCode(w, "insufficient funds", httputil.CodeInsufficientFunds, http.StatusBadRequest)
		default:
			logger.Error("transfer failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "transfer failed", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("transfer successful", "user_id", userID)

	httputil.RespondJSON(w, TransferResponse{
		Message: "Transfer successful",
		Result:  result,
	}, http.StatusOK)
}
