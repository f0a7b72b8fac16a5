package domain

import "time"

// Account represents a per-user record holding the encrypted current balance.
// TelegramID is the opaque external identity, assigned on first contact and
// never changed; the balance is the only mutable field.
type Account struct {
	TelegramID       int64     `json:"telegram_id"`
	EncryptedBalance string    `json:"-"` // AES-256 encrypted, never expose raw
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
