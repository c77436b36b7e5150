package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/lumipay/lumipay-api/internal/database"
)

const resetTokenTTL = 30 * time.Minute

var (
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrResetTokenExpired  = errors.New("reset token has expired")
	ErrResetTokenUsed     = errors.New("reset token already used")
)

// ResetTokenRepository handles single-use password reset tokens in Postgres.
// Only the SHA-256 of a token is persisted; the plaintext token exists only
// in the email sent to the user.
type ResetTokenRepository struct {
	db *bun.DB
}

func NewResetTokenRepository(db *bun.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create generates a fresh reset token for the email and stores its hash
// with a 30-minute expiry. Any previous unused tokens for the same email are
// superseded in the same transaction, so only the newest token is consumable.
func (r *ResetTokenRepository) Create(ctx context.Context, email string) (string, error) {
	token, err := generateRandomToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	dbToken := &database.ResetToken{
		Email:     email,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*database.ResetToken)(nil)).
			Where("email = ?", email).
			Where("used_at IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to supersede old reset tokens: %w", err)
		}

		if _, err := tx.NewInsert().Model(dbToken).Exec(ctx); err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

// Consume atomically claims the token and runs apply (the password update)
// in the same transaction. The guarded UPDATE is the single serialization
// point: under concurrent consumption attempts exactly one claims the row,
// the rest classify as used/expired/not found.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string, apply func(ctx context.Context, tx bun.Tx, email string) error) error {
	tokenHash := hashToken(token)

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var email string
		err := tx.NewUpdate().
			Model((*database.ResetToken)(nil)).
			Set("used_at = now()").
			Where("token_hash = ?", tokenHash).
			Where("used_at IS NULL").
			Where("expires_at > now()").
			Returning("email").
			Scan(ctx, &email)

		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return r.classifyFailure(ctx, tx, tokenHash)
			}
			return fmt.Errorf("failed to claim reset token: %w", err)
		}

		return apply(ctx, tx, email)
	})
}

// classifyFailure distinguishes why a token could not be claimed
func (r *ResetTokenRepository) classifyFailure(ctx context.Context, tx bun.Tx, tokenHash string) error {
	dbToken := new(database.ResetToken)
	err := tx.NewSelect().
		Model(dbToken).
		Where("token_hash = ?", tokenHash).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResetTokenNotFound
		}
		return fmt.Errorf("failed to inspect reset token: %w", err)
	}

	if dbToken.UsedAt != nil {
		return ErrResetTokenUsed
	}
	return ErrResetTokenExpired
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// hashToken returns the hex-encoded SHA-256 of a token
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
