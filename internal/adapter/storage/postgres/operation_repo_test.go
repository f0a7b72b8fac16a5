package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"balance-ledger-bot/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperationRepo(mock)
	op := &domain.Operation{
		UserID:          42,
		AmountEncrypted: "aes_encrypted_amount_blob",
		CreatedAt:       time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(op.UserID, op.AmountEncrypted, op.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, op)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepo_Append_Failure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperationRepo(mock)
	op := &domain.Operation{
		UserID:          42,
		AmountEncrypted: "aes_encrypted_amount_blob",
		CreatedAt:       time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO operations").
		WithArgs(op.UserID, op.AmountEncrypted, op.CreatedAt).
		WillReturnError(errors.New("constraint violation"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, op)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperationRepo(mock)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "user_id", "amount_ciphertext", "created_at"}).
		AddRow(int64(1), int64(42), "enc_op_1", now).
		AddRow(int64(2), int64(42), "enc_op_2", now)

	mock.ExpectQuery("SELECT .+ FROM operations WHERE user_id .+ ORDER BY id").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	ops, err := repo.ListByUser(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, int64(1), ops[0].ID)
	assert.Equal(t, "enc_op_1", ops[0].AmountEncrypted)
	assert.Equal(t, int64(2), ops[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepo_ListByUser_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperationRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM operations WHERE user_id .+ ORDER BY id").
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "amount_ciphertext", "created_at"}))

	ops, err := repo.ListByUser(context.Background(), 404)
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepo_CountByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperationRepo(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.CountByUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		UserID:    42,
		Level:     domain.AuditLevelInfo,
		Operation: domain.OpAddBalance,
		Message:   "add_balance: 10.50",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, entry.UserID, string(entry.Level), entry.Operation, entry.Message, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
