package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/argon2"

	"github.com/lumipay/lumipay-api/internal/logging"
	"github.com/lumipay/lumipay-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPhoneRequired      = errors.New("phone is required")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooWeak    = errors.New("password must be at least 8 characters and contain a letter and a digit")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// Argon2id parameters - tuned for security vs performance balance
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{5,18}$`)

// Service handles authentication business logic
type Service struct {
	userRepo             *user.Repository
	resetTokenRepo       *ResetTokenRepository
	tokenService         TokenService
	emailService         EmailService
	logger               *logging.Logger
	sessionTokenDuration time.Duration
	openingBalance       decimal.Decimal
}

func NewService(
	userRepo *user.Repository,
	resetTokenRepo *ResetTokenRepository,
	tokenService TokenService,
	emailService EmailService,
	logger *logging.Logger,
	sessionTokenDuration time.Duration,
	openingBalance decimal.Decimal,
) *Service {
	return &Service{
		userRepo:             userRepo,
		resetTokenRepo:       resetTokenRepo,
		tokenService:         tokenService,
		emailService:         emailService,
		logger:               logger,
		sessionTokenDuration: sessionTokenDuration,
		openingBalance:       openingBalance,
	}
}

// Register creates a new user account with the configured opening balance
func (s *Service) Register(ctx context.Context, username, email, phone, password string) (*user.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidPhone
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if err := checkPasswordStrength(password); err != nil {
		return nil, err
	}

	// Hash password using argon2id
	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, username, email, phone, passwordHash, s.openingBalance)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates a user and returns a session token together with the
// user. Unknown email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verifyPassword(existingUser.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, existingUser.Email, s.sessionTokenDuration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return token, existingUser, nil
}

// RequestPasswordReset initiates the password reset process
// Always returns nil to prevent email enumeration attacks
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal if user exists
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		// Log error but return nil to prevent enumeration
		s.logger.Warn("failed to get user for password reset", "error", err)
		return nil
	}

	token, err := s.resetTokenRepo.Create(ctx, existingUser.Email)
	if err != nil {
		s.logger.Warn("failed to create password reset token", "error", err)
		return nil
	}

	// Send password reset email in goroutine (non-blocking)
	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendPasswordResetEmail(emailCtx, existingUser.Email, token); err != nil {
			s.logger.Warn("failed to send password reset email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}

// ResetPassword consumes a reset token and applies the new password hash in
// the same transaction, so the token cannot be replayed even under
// concurrent consumption attempts.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if err := checkPasswordStrength(newPassword); err != nil {
		return err
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.resetTokenRepo.Consume(ctx, token, func(ctx context.Context, tx bun.Tx, email string) error {
		if err := s.userRepo.UpdatePasswordByEmail(ctx, tx, email, passwordHash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
}

// checkPasswordStrength enforces the password policy at the core boundary
// rather than trusting client-side validation
func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooWeak
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}

	return nil
}

// hashPassword creates an argon2id hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	// Generate random salt
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	// Hash password with argon2id
	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks if a password matches the stored hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	// Parse the encoded hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	// Parse parameters
	var version int
	var memory, time uint32
	var threads uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)
	if err != nil {
		return false
	}
	_, err = fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return false
	}

	// Decode salt and hash
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Hash the input password with the same parameters
	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	// Compare hashes using constant-time comparison
	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}
