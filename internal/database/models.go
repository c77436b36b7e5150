package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User is the database model for the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Username     string          `bun:"username,notnull"`
	Email        string          `bun:"email,notnull,unique"`
	Phone        string          `bun:"phone,notnull"`
	PasswordHash string          `bun:"password_hash,notnull"`
	Balance      decimal.Decimal `bun:"balance,notnull"`
	CreatedAt    time.Time       `bun:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time       `bun:"updated_at,notnull,default:now()"`
}

// Transaction is the database model for the append-only transactions journal
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID           uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID       uuid.UUID       `bun:"user_id,notnull,type:uuid"`
	Type         string          `bun:"type,notnull"`
	Counterparty string          `bun:"counterparty,notnull"`
	Amount       decimal.Decimal `bun:"amount,notnull"`
	Status       string          `bun:"status,notnull"`
	CreatedAt    time.Time       `bun:"created_at,notnull,default:now()"`
}

// ResetToken is the database model for single-use password reset tokens.
// Only the SHA-256 of the token is stored.
type ResetToken struct {
	bun.BaseModel `bun:"table:reset_tokens,alias:rt"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email     string     `bun:"email,notnull"`
	TokenHash string     `bun:"token_hash,notnull,unique"`
	ExpiresAt time.Time  `bun:"expires_at,notnull"`
	UsedAt    *time.Time `bun:"used_at"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:now()"`
}
