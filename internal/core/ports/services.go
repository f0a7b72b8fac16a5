package ports

import (
	"context"

	"balance-ledger-bot/internal/core/domain"
)

// EncryptionService handles symmetric encryption of persisted decimal strings.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
}

// AuditService records one structured audit entry per handled request.
// Recording is best effort and must never fail the request.
type AuditService interface {
	Audit(ctx context.Context, level domain.AuditLevel, userID int64, operation, message string)
}

// Notifier delivers a user-facing reply to the external messaging platform.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// LedgerService is the single entry point of the balance ledger engine: it
// maps one inbound (user, text) pair to an atomic state transition and a
// typed Outcome. The engine holds no state across requests.
type LedgerService interface {
	Handle(ctx context.Context, userID int64, text string) domain.Outcome
}
