package ports

import (
	"context"

	"balance-ledger-bot/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Exists(ctx context.Context, telegramID int64) (bool, error)
	Get(ctx context.Context, telegramID int64) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, telegramID int64) (*domain.Account, error)
	Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx pgx.Tx, telegramID int64, encryptedBalance string) error
}

// OperationRepository defines persistence for the append-only operation log.
// Append runs inside the same transaction as the balance write it records.
type OperationRepository interface {
	Append(ctx context.Context, tx pgx.Tx, op *domain.Operation) error
	ListByUser(ctx context.Context, telegramID int64) ([]domain.Operation, error)
	CountByUser(ctx context.Context, telegramID int64) (int64, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
