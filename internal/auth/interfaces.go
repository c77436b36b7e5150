package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines the interface for session token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// EmailService is the external notification sender that delivers reset links
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}
