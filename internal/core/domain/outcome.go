package domain

import "github.com/shopspring/decimal"

// OutcomeKind classifies the result of handling one inbound request.
type OutcomeKind string

const (
	OutcomeWelcome           OutcomeKind = "WELCOME"
	OutcomeDeposited         OutcomeKind = "DEPOSITED"
	OutcomeWithdrawn         OutcomeKind = "WITHDRAWN"
	OutcomeCurrentBalance    OutcomeKind = "CURRENT_BALANCE"
	OutcomeInsufficientFunds OutcomeKind = "INSUFFICIENT_FUNDS"
	OutcomeInvalidInput      OutcomeKind = "INVALID_INPUT"
	OutcomeSystemError       OutcomeKind = "SYSTEM_ERROR"
)

// Outcome is the typed result of one handled request. Business rejections
// (invalid input, insufficient funds) are Outcomes, not errors; only store or
// cipher failures surface as SystemError, with the cause kept in the audit
// sink rather than the Outcome.
type Outcome struct {
	Kind    OutcomeKind
	Amount  decimal.Decimal // movement amount, set for Deposited/Withdrawn
	Balance decimal.Decimal // balance after the operation, where known
	ErrCode string          // stable operation error code for SystemError
}

// Welcome is the outcome of first contact: account created with zero balance.
func Welcome() Outcome {
	return Outcome{Kind: OutcomeWelcome, Balance: decimal.Zero}
}

// Deposited reports a successful deposit and the resulting balance.
func Deposited(amount, balance decimal.Decimal) Outcome {
	return Outcome{Kind: OutcomeDeposited, Amount: amount, Balance: balance}
}

// Withdrawn reports a successful withdrawal and the resulting balance.
func Withdrawn(amount, balance decimal.Decimal) Outcome {
	return Outcome{Kind: OutcomeWithdrawn, Amount: amount, Balance: balance}
}

// CurrentBalance reports the balance without any mutation.
func CurrentBalance(balance decimal.Decimal) Outcome {
	return Outcome{Kind: OutcomeCurrentBalance, Balance: balance}
}

// InsufficientFunds rejects a withdrawal exceeding the current balance.
func InsufficientFunds() Outcome {
	return Outcome{Kind: OutcomeInsufficientFunds}
}

// InvalidInput rejects an unparsable message.
func InvalidInput() Outcome {
	return Outcome{Kind: OutcomeInvalidInput}
}

// SystemError reports a store or cipher failure under a stable code.
func SystemError(code string) Outcome {
	return Outcome{Kind: OutcomeSystemError, ErrCode: code}
}
