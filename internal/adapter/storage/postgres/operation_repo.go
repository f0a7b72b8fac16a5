package postgres

import (
	"context"
	"fmt"

	"balance-ledger-bot/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// OperationRepo implements ports.OperationRepository. Operation rows are
// append-only; there are no update or delete paths.
type OperationRepo struct {
	pool Pool
}

// NewOperationRepo creates a new OperationRepo.
func NewOperationRepo(pool Pool) *OperationRepo {
	return &OperationRepo{pool: pool}
}

// Append inserts an operation record within a database transaction.
func (r *OperationRepo) Append(ctx context.Context, tx pgx.Tx, op *domain.Operation) error {
	query := `INSERT INTO operations (user_id, amount_ciphertext, created_at) VALUES ($1, $2, $3)`

	_, err := tx.Exec(ctx, query, op.UserID, op.AmountEncrypted, op.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// ListByUser fetches a user's operations in insertion order.
func (r *OperationRepo) ListByUser(ctx context.Context, telegramID int64) ([]domain.Operation, error) {
	query := `SELECT id, user_id, amount_ciphertext, created_at
		FROM operations WHERE user_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, telegramID)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.Operation
	for rows.Next() {
		op := domain.Operation{}
		if err := rows.Scan(&op.ID, &op.UserID, &op.AmountEncrypted, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation rows: %w", err)
	}
	return ops, nil
}

// CountByUser counts a user's operation records.
func (r *OperationRepo) CountByUser(ctx context.Context, telegramID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM operations WHERE user_id = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, telegramID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return count, nil
}
