package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/lumipay/lumipay-api/internal/database"
)

// Repository handles the append-only transactions journal. Rows are written
// once and never updated except for status transitions.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Append writes one journal row inside the caller's transaction
func (r *Repository) Append(ctx context.Context, tx bun.IDB, userID uuid.UUID, txType, counterparty string, amount decimal.Decimal, status string) error {
	record := &database.Transaction{
		UserID:       userID,
		Type:         txType,
		Counterparty: counterparty,
		Amount:       amount,
		Status:       status,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append transaction record: %w", err)
	}

	return nil
}

// ListRecent returns a user's most recent journal rows, newest first
func (r *Repository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*Transaction, error) {
	var dbRecords []*database.Transaction
	err := r.db.NewSelect().
		Model(&dbRecords).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	records := make([]*Transaction, 0, len(dbRecords))
	for _, dbRecord := range dbRecords {
		records = append(records, &Transaction{
			ID:           dbRecord.ID,
			UserID:       dbRecord.UserID,
			Type:         dbRecord.Type,
			Counterparty: dbRecord.Counterparty,
			Amount:       dbRecord.Amount,
			Status:       dbRecord.Status,
			CreatedAt:    dbRecord.CreatedAt,
		})
	}
	return records, nil
}
