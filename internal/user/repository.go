package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/lumipay/lumipay-api/internal/database"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user with the given opening balance
func (r *Repository) Create(ctx context.Context, username, email, phone, passwordHash string, openingBalance decimal.Decimal) (*User, error) {
	dbUser := &database.User{
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Balance:      openingBalance,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("u.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetForUpdate reads the given users inside the caller's transaction with
// row-level locks. Rows are locked in id order so concurrent transfers
// touching the same pair cannot deadlock.
func (r *Repository) GetForUpdate(ctx context.Context, tx bun.IDB, ids ...uuid.UUID) ([]*User, error) {
	var dbUsers []*database.User
	err := tx.NewSelect().
		Model(&dbUsers).
		Where("u.id IN (?)", bun.In(ids)).
		Order("u.id ASC").
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to lock users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		users = append(users, mapDBUserToModel(dbUser))
	}
	return users, nil
}

// AdjustBalance applies a signed delta to a user's balance inside the
// caller's transaction. The guard in the WHERE clause keeps the balance from
// ever going negative even if the caller's pre-check raced.
func (r *Repository) AdjustBalance(ctx context.Context, tx bun.IDB, userID uuid.UUID, delta decimal.Decimal) error {
	result, err := tx.NewUpdate().
		Model((*database.User)(nil)).
		Set("balance = balance + ?", delta).
		Set("updated_at = now()").
		Where("id = ?", userID).
		Where("balance + ? >= 0", delta).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		exists, err := tx.NewSelect().
			Model((*database.User)(nil)).
			Where("id = ?", userID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to check user existence: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrInsufficientFunds
	}

	return nil
}

// UpdatePasswordByEmail updates a user's password hash. Accepts bun.IDB so
// the reset flow can run it inside the token-consume transaction.
func (r *Repository) UpdatePasswordByEmail(ctx context.Context, idb bun.IDB, email, passwordHash string) error {
	result, err := idb.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = now()").
		Where("email = ?", email).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Username:     dbu.Username,
		Email:        dbu.Email,
		Phone:        dbu.Phone,
		PasswordHash: dbu.PasswordHash,
		Balance:      dbu.Balance,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
