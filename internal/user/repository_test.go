package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipay/lumipay-api/internal/database"
)

var userColumns = []string{"id", "username", "email", "phone", "password_hash", "balance", "created_at", "updated_at"}

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewRepository(database.NewBunDB(mockDB)), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newTestRepo(t)

	userID := uuid.New()
	now := time.Now()
	opening := decimal.RequireFromString("100000.00")

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userID.String(), "alice", "alice@example.com", "+420123456789", "hash", "100000.00", now, now))

	created, err := repo.Create(context.Background(), "alice", "alice@example.com", "+420123456789", "hash", opening)
	require.NoError(t, err)
	assert.Equal(t, userID, created.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.True(t, created.Balance.Equal(opening))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))

	_, err := repo.Create(context.Background(), "alice", "alice@example.com", "+420123456789", "hash", decimal.Zero)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newTestRepo(t)

	userID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userID.String(), "alice", "alice@example.com", "+420123456789", "hash", "98765.43", now, now))

	found, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, found.ID)
	assert.True(t, found.Balance.Equal(decimal.RequireFromString("98765.43")))
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetForUpdate_LocksInIDOrder(t *testing.T) {
	repo, mock := newTestRepo(t)

	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "users" (.+) ORDER BY (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(a.String(), "alice", "alice@example.com", "+420123456789", "hash", "100.00", now, now).
			AddRow(b.String(), "bob", "bob@example.com", "+420987654321", "hash", "200.00", now, now))

	users, err := repo.GetForUpdate(context.Background(), repo.db, b, a)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a, users[0].ID)
	assert.Equal(t, b, users[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustBalance(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AdjustBalance(context.Background(), repo.db, uuid.New(), decimal.RequireFromString("-50.00"))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustBalance_InsufficientFunds(t *testing.T) {
	repo, mock := newTestRepo(t)

	// Guarded update touches no rows; the user exists, so funds were short
	mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count(.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.AdjustBalance(context.Background(), repo.db, uuid.New(), decimal.RequireFromString("-999999.00"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAdjustBalance_UserNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count(.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.AdjustBalance(context.Background(), repo.db, uuid.New(), decimal.RequireFromString("-1.00"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePasswordByEmail_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePasswordByEmail(context.Background(), repo.db, "nobody@example.com", "newhash")
	assert.ErrorIs(t, err, ErrNotFound)
}
