package service

import (
	"context"
	"time"

	"balance-ledger-bot/internal/core/domain"
	"balance-ledger-bot/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditServiceImpl implements ports.AuditService. Entries go to the
// structured log and, when a repository is configured, to the append-only
// audit_logs table. Persistence is best effort: a failed insert is logged
// and never surfaces to the request.
type AuditServiceImpl struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, audit entries are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditServiceImpl {
	return &AuditServiceImpl{repo: repo, log: log}
}

// Audit records one audit entry for a handled request.
func (s *AuditServiceImpl) Audit(ctx context.Context, level domain.AuditLevel, userID int64, operation, message string) {
	evt := s.log.Info()
	if level == domain.AuditLevelError {
		evt = s.log.Error()
	}
	evt.Int64("user_id", userID).
		Str("operation", operation).
		Str("message", message).
		Msg("audit")

	if s.repo == nil {
		return
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     level,
		Operation: operation,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("operation", operation).Msg("failed to persist audit entry")
	}
}
