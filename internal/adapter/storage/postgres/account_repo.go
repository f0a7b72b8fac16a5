package postgres

import (
	"context"
	"errors"
	"fmt"

	"balance-ledger-bot/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Exists reports whether an account row exists for the given identity.
func (r *AccountRepo) Exists(ctx context.Context, telegramID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE telegram_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, telegramID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account exists: %w", err)
	}
	return exists, nil
}

// Get fetches an account by its identity (without locking).
func (r *AccountRepo) Get(ctx context.Context, telegramID int64) (*domain.Account, error) {
	query := `SELECT telegram_id, balance_ciphertext, created_at, updated_at
		FROM accounts WHERE telegram_id = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&a.TelegramID, &a.EncryptedBalance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetForUpdate fetches an account with pessimistic locking.
// This MUST be called within a transaction.
func (r *AccountRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, telegramID int64) (*domain.Account, error) {
	query := `SELECT telegram_id, balance_ciphertext, created_at, updated_at
		FROM accounts WHERE telegram_id = $1 FOR UPDATE`

	a := &domain.Account{}
	err := tx.QueryRow(ctx, query, telegramID).Scan(
		&a.TelegramID, &a.EncryptedBalance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// Create inserts a new account within a database transaction.
func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error {
	query := `INSERT INTO accounts (telegram_id, balance_ciphertext, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query,
		account.TelegramID, account.EncryptedBalance, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// UpdateBalance updates an account's encrypted balance within a transaction.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, telegramID int64, encryptedBalance string) error {
	query := `UPDATE accounts SET balance_ciphertext = $1, updated_at = NOW() WHERE telegram_id = $2`

	tag, err := tx.Exec(ctx, query, encryptedBalance, telegramID)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %d", telegramID)
	}
	return nil
}
