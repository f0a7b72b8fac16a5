package domain

import "time"

// Operation is an immutable ledger entry recording one signed balance change.
// Positive amounts are deposits, negative are withdrawals; a zero-amount
// entry is written once, at account creation. Rows are append-only and their
// insertion order is the ledger history for the account.
type Operation struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	AmountEncrypted string    `json:"-"` // AES-256 encrypted signed decimal
	CreatedAt       time.Time `json:"created_at"`
}
