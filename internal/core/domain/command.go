package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CommandKind classifies a parsed inbound message.
type CommandKind string

const (
	CommandDeposit      CommandKind = "DEPOSIT"
	CommandWithdraw     CommandKind = "WITHDRAW"
	CommandQueryBalance CommandKind = "QUERY_BALANCE"
	CommandInvalid      CommandKind = "INVALID"
)

// Command is the typed form of one inbound message. It is derived
// deterministically from the raw text and never persisted.
type Command struct {
	Kind   CommandKind
	Amount decimal.Decimal // positive for Deposit and Withdraw, zero otherwise
	Raw    string
}

// ParseCommand interprets free-form message text as a ledger command.
// A comma decimal separator is accepted and normalized to a dot; no other
// locale handling, thousands separators or currency symbols are supported.
// A positive number is a deposit, a negative one a withdrawal of its
// absolute value, and an exact zero queries the balance.
func ParseCommand(text string) Command {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return Command{Kind: CommandInvalid, Raw: text}
	}

	switch amount.Sign() {
	case 1:
		return Command{Kind: CommandDeposit, Amount: amount, Raw: text}
	case -1:
		return Command{Kind: CommandWithdraw, Amount: amount.Neg(), Raw: text}
	default:
		return Command{Kind: CommandQueryBalance, Raw: text}
	}
}
