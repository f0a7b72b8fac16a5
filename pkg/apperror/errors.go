package apperror

import "fmt"

// AppError is a structured error carrying a stable code alongside the
// wrapped internal cause. The cause is for logs only, never for end users.
type AppError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ---- Ledger Business Logic (LEDGER) ----

func ErrAccountNotFound(id int64) *AppError {
	return New("LEDGER_001", fmt.Sprintf("account %d not found", id))
}

func ErrInsufficientFunds() *AppError {
	return New("LEDGER_002", "insufficient funds on account")
}

func ErrInvalidAmount() *AppError {
	return New("LEDGER_003", "amount must be positive")
}

// ---- System & Infrastructure (SYS) ----

func ErrStore(err error) *AppError {
	return Wrap("SYS_001", "ledger store failure", err)
}

func ErrDecryption(err error) *AppError {
	return Wrap("SYS_002", "stored ciphertext could not be decrypted", err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "internal error", err)
}
