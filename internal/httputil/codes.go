package httputil

// Machine-readable error codes returned alongside error messages.
// Clients should branch on these, not on message text.
const (
	// Generic
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"

	// Registration / validation
	CodeEmailAlreadyExists = "email_already_exists"
	CodeValidationFailed   = "validation_failed"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodePasswordTooWeak    = "password_too_weak"

	// Login / session
	CodeInvalidCredentials = "invalid_credentials"
	CodeMissingAuth        = "missing_auth"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeInvalidTokenUserID = "invalid_token_user_id"

	// Password reset
	CodeInvalidResetToken = "invalid_reset_token"
	CodeResetTokenExpired = "reset_token_expired"
	CodeResetTokenUsed    = "reset_token_used"

	// Ledger
	CodeInvalidAmount     = "invalid_amount"
	CodeInsufficientFunds = "insufficient_funds"
	CodeRecipientNotFound = "recipient_not_found"
	CodeSelfTransfer      = "self_transfer"
)
