package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLevel is the severity of an audit entry.
type AuditLevel string

const (
	AuditLevelInfo  AuditLevel = "info"
	AuditLevelError AuditLevel = "error"
)

// Operation names used in audit entries and SystemError codes.
const (
	OpCreateUser           = "create_user"
	OpCreateUserError      = "create_user_error"
	OpAddBalance           = "add_balance"
	OpAddBalanceError      = "add_balance_error"
	OpSubtractBalance      = "subtract_balance"
	OpSubtractBalanceError = "subtract_balance_error"
	OpInsufficientFunds    = "insufficient_funds"
	OpGetBalance           = "get_balance"
	OpGetBalanceError      = "get_balance_error"
	OpInvalidInput         = "invalid_input"
	OpAccountCheckError    = "account_check_error"
)

// AuditEntry records one handled request in the append-only audit trail.
type AuditEntry struct {
	ID        uuid.UUID  `json:"id"`
	UserID    int64      `json:"user_id"`
	Level     AuditLevel `json:"level"`
	Operation string     `json:"operation"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}
