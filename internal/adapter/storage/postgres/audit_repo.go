package postgres

import (
	"context"
	"fmt"

	"balance-ledger-bot/internal/core/domain"
)

// AuditRepo implements ports.AuditRepository over the append-only audit_logs table.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create inserts one audit entry.
func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query := `INSERT INTO audit_logs (id, user_id, level, operation, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, string(entry.Level), entry.Operation, entry.Message, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
