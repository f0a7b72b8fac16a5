package telegram

import (
	"fmt"

	"balance-ledger-bot/internal/core/domain"
)

// Render maps a typed outcome to the user-facing reply text. System errors
// deliberately carry no detail; the cause lives in the logs and audit trail.
func Render(outcome domain.Outcome) string {
	switch outcome.Kind {
	case domain.OutcomeWelcome:
		return "Welcome! Your balance: 0.00 USD"
	case domain.OutcomeDeposited:
		return fmt.Sprintf("Deposited %s USD. Current balance: %s USD.",
			outcome.Amount.StringFixed(2), outcome.Balance.StringFixed(2))
	case domain.OutcomeWithdrawn:
		return fmt.Sprintf("Withdrew %s USD. Current balance: %s USD.",
			outcome.Amount.StringFixed(2), outcome.Balance.StringFixed(2))
	case domain.OutcomeCurrentBalance:
		return fmt.Sprintf("Current balance: %s USD", outcome.Balance.StringFixed(2))
	case domain.OutcomeInsufficientFunds:
		return "Insufficient funds!"
	case domain.OutcomeInvalidInput:
		return "Invalid input! Please enter a numeric value!"
	default:
		return "Something went wrong. Please try again later."
	}
}
