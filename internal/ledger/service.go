package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/lumipay/lumipay-api/internal/logging"
	"github.com/lumipay/lumipay-api/internal/user"
)

var (
	ErrInvalidAmount     = errors.New("amount must be a positive value with at most two decimal places")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
)

const recentTransactionLimit = 10

// Service implements the ledger operations: money transfer and the
// authenticated user data read
type Service struct {
	db       *bun.DB
	userRepo *user.Repository
	txRepo   *Repository
	logger   *logging.Logger
}

func NewService(db *bun.DB, userRepo *user.Repository, txRepo *Repository, logger *logging.Logger) *Service {
	return &Service{
		db:       db,
		userRepo: userRepo,
		txRepo:   txRepo,
		logger:   logger,
	}
}

// UserData bundles a user with their recent transaction history
type UserData struct {
	User         *user.User
	Transactions []*Transaction
}

// UserData returns the user and their 10 most recent journal rows
func (s *Service) UserData(ctx context.Context, userID uuid.UUID) (*UserData, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.txRepo.ListRecent(ctx, userID, recentTransactionLimit)
	if err != nil {
		return nil, err
	}

	return &UserData{User: u, Transactions: transactions}, nil
}

// Transfer moves amount from the sender to the recipient resolved by email.
// Both balance mutations and both journal rows happen in one database
// transaction; the sender's row is read under FOR UPDATE so concurrent
// transfers cannot pass the sufficiency check against a stale balance.
func (s *Service) Transfer(ctx context.Context, senderID uuid.UUID, recipientLabel string, amount decimal.Decimal) (*TransferResult, error) {
	// Reject bad amounts before touching storage
	if !amount.IsPositive() || amount.Exponent() < -2 {
		return nil, ErrInvalidAmount
	}

	recipient, err := s.userRepo.GetByEmail(ctx, recipientLabel)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	if recipient.ID == senderID {
		return nil, ErrSelfTransfer
	}

	var result *TransferResult
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Lock both rows in id order
		locked, err := s.userRepo.GetForUpdate(ctx, tx, senderID, recipient.ID)
		if err != nil {
			return err
		}

		var sender *user.User
		for _, u := range locked {
			if u.ID == senderID {
				sender = u
			}
		}
		if sender == nil {
			return user.ErrNotFound
		}
		if len(locked) != 2 {
			// Recipient vanished between resolution and locking
			return ErrRecipientNotFound
		}

		if sender.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		if err := s.userRepo.AdjustBalance(ctx, tx, senderID, amount.Neg()); err != nil {
			return err
		}
		if err := s.userRepo.AdjustBalance(ctx, tx, recipient.ID, amount); err != nil {
			return err
		}

		if err := s.txRepo.Append(ctx, tx, senderID, TypeDebit, recipient.Email, amount, StatusCompleted); err != nil {
			return err
		}
		if err := s.txRepo.Append(ctx, tx, recipient.ID, TypeCredit, sender.Email, amount, StatusCompleted); err != nil {
			return err
		}

		result = &TransferResult{
			Recipient:  recipient.Email,
			Amount:     amount,
			NewBalance: sender.Balance.Sub(amount),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		"sender_id", senderID,
		"recipient_id", recipient.ID,
		"amount", amount.String(),
	)

	return result, nil
}
