package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"balance-ledger-bot/internal/core/domain"
	"balance-ledger-bot/internal/core/ports"
	"balance-ledger-bot/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// initialBalance is the plaintext balance written at account creation.
const initialBalance = "0.00"

// LedgerServiceImpl implements ports.LedgerService. It is a stateless
// orchestrator: all durable state lives behind the repositories, and every
// mutating request runs as one database transaction with the account row
// locked, so concurrent requests for the same user serialize instead of
// losing updates.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	opRepo      ports.OperationRepository
	encSvc      ports.EncryptionService
	transactor  ports.DBTransactor
	auditSvc    ports.AuditService
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	opRepo ports.OperationRepository,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		opRepo:      opRepo,
		encSvc:      encSvc,
		transactor:  transactor,
		auditSvc:    auditSvc,
		log:         log,
	}
}

// Handle maps one inbound (user, text) pair to an Outcome. First contact
// creates the account and discards the message text; afterwards the text is
// parsed as a command against the existing account. Every branch emits
// exactly one audit record.
func (s *LedgerServiceImpl) Handle(ctx context.Context, userID int64, text string) domain.Outcome {
	exists, err := s.accountRepo.Exists(ctx, userID)
	if err != nil {
		s.auditSvc.Audit(ctx, domain.AuditLevelError, userID, domain.OpAccountCheckError, err.Error())
		return domain.SystemError(domain.OpAccountCheckError)
	}

	if !exists {
		return s.createAccount(ctx, userID)
	}

	cmd := domain.ParseCommand(text)
	switch cmd.Kind {
	case domain.CommandDeposit:
		return s.deposit(ctx, userID, cmd.Amount)
	case domain.CommandWithdraw:
		return s.withdraw(ctx, userID, cmd.Amount)
	case domain.CommandQueryBalance:
		return s.queryBalance(ctx, userID)
	default:
		s.auditSvc.Audit(ctx, domain.AuditLevelError, userID, domain.OpInvalidInput,
			fmt.Sprintf("unparsable input %q", text))
		return domain.InvalidInput()
	}
}

// createAccount inserts the account row and its zero-amount operation record
// as one atomic unit; neither row survives a failure of the other.
func (s *LedgerServiceImpl) createAccount(ctx context.Context, userID int64) domain.Outcome {
	err := func() error {
		balanceEnc, err := s.encSvc.Encrypt(initialBalance)
		if err != nil {
			return fmt.Errorf("encrypt initial balance: %w", err)
		}
		amountEnc, err := s.encSvc.Encrypt(initialBalance)
		if err != nil {
			return fmt.Errorf("encrypt initial amount: %w", err)
		}

		dbTx, err := s.transactor.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer dbTx.Rollback(ctx) //nolint:errcheck

		now := time.Now().UTC()
		account := &domain.Account{
			TelegramID:       userID,
			EncryptedBalance: balanceEnc,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.accountRepo.Create(ctx, dbTx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		op := &domain.Operation{
			UserID:          userID,
			AmountEncrypted: amountEnc,
			CreatedAt:       now,
		}
		if err := s.opRepo.Append(ctx, dbTx, op); err != nil {
			return fmt.Errorf("append creation operation: %w", err)
		}

		return dbTx.Commit(ctx)
	}()
	if err != nil {
		s.auditSvc.Audit(ctx, domain.AuditLevelError, userID, domain.OpCreateUserError, err.Error())
		return domain.SystemError(domain.OpCreateUserError)
	}

	s.auditSvc.Audit(ctx, domain.AuditLevelInfo, userID, domain.OpCreateUser,
		"user created with balance 0.00 USD")
	return domain.Welcome()
}

func (s *LedgerServiceImpl) deposit(ctx context.Context, userID int64, amount decimal.Decimal) domain.Outcome {
	newBalance, err := s.applyDelta(ctx, userID, amount)
	if err != nil {
		s.auditSvc.Audit(ctx, domain.AuditLevelError, userID, domain.OpAddBalanceError, err.Error())
		return domain.SystemError(domain.OpAddBalanceError)
	}

	s.auditSvc.Audit(ctx, domain.AuditLevelInfo, userID, domain.OpAddBalance,
		fmt.Sprintf("added %s USD, new balance: %s USD", amount.StringFixed(2), newBalance.StringFixed(2)))
	return domain.Deposited(amount, newBalance)
}

func (s *LedgerServiceImpl) withdraw(ctx context.Context, userID int64, amount decimal.Decimal) domain.Outcome {
	newBalance, err := s.applyDelta(ctx, userID, amount.Neg())
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "LEDGER_002" {
			s.auditSvc.Audit(ctx, domain.AuditLevelError, userID, domain.OpInsufficientFunds,
				"insufficient funds for operation")
			return domain.InsufficientFunds()
		}
		s.auditSvc.Audit(ctx, domain.AuditLevelError, userID, domain.OpSubtractBalanceError, err.Error())
		return domain.SystemError(domain.OpSubtractBalanceError)
	}

	s.auditSvc.Audit(ctx, domain.AuditLevelInfo, userID, domain.OpSubtractBalance,
		fmt.Sprintf("subtracted %s USD, new balance: %s USD", amount.StringFixed(2), newBalance.StringFixed(2)))
	return domain.Withdrawn(amount, newBalance)
}

func (s *LedgerServiceImpl) queryBalance(ctx context.Context, userID int64) domain.Outcome {
	balance, err := s.getBalance(ctx, userID)
	if err != nil {
		s.auditSvc.Audit(ctx, domain.AuditLevelError, userID, domain.OpGetBalanceError, err.Error())
		return domain.SystemError(domain.OpGetBalanceError)
	}

	s.auditSvc.Audit(ctx, domain.AuditLevelInfo, userID, domain.OpGetBalance,
		fmt.Sprintf("current balance: %s USD", balance.StringFixed(2)))
	return domain.CurrentBalance(balance)
}

// getBalance fetches and decrypts the current balance without locking.
func (s *LedgerServiceImpl) getBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	account, err := s.accountRepo.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, apperror.ErrStore(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return decimal.Zero, apperror.ErrAccountNotFound(userID)
	}
	return s.decryptBalance(account.EncryptedBalance)
}

// applyDelta atomically re-reads the balance under a row lock, writes the new
// encrypted balance, and appends the encrypted signed operation record. A
// negative result is never committed: the transaction rolls back and the
// caller receives an insufficient-funds error with the store untouched.
func (s *LedgerServiceImpl) applyDelta(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return decimal.Zero, apperror.ErrStore(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accountRepo.GetForUpdate(ctx, dbTx, userID)
	if err != nil {
		return decimal.Zero, apperror.ErrStore(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return decimal.Zero, apperror.ErrAccountNotFound(userID)
	}

	current, err := s.decryptBalance(account.EncryptedBalance)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := current.Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, apperror.ErrInsufficientFunds()
	}

	newBalanceEnc, err := s.encSvc.Encrypt(newBalance.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("encrypt new balance: %w", err)
	}
	deltaEnc, err := s.encSvc.Encrypt(delta.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("encrypt delta: %w", err)
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, userID, newBalanceEnc); err != nil {
		return decimal.Zero, apperror.ErrStore(fmt.Errorf("update balance: %w", err))
	}

	op := &domain.Operation{
		UserID:          userID,
		AmountEncrypted: deltaEnc,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.opRepo.Append(ctx, dbTx, op); err != nil {
		return decimal.Zero, apperror.ErrStore(fmt.Errorf("append operation: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return decimal.Zero, apperror.ErrStore(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Debug().
		Int64("user_id", userID).
		Str("delta", delta.String()).
		Str("balance", newBalance.String()).
		Msg("delta applied")

	return newBalance, nil
}

func (s *LedgerServiceImpl) decryptBalance(blob string) (decimal.Decimal, error) {
	plaintext, err := s.encSvc.Decrypt(blob)
	if err != nil {
		return decimal.Zero, fmt.Errorf("decrypt balance: %w", err)
	}
	balance, err := decimal.NewFromString(plaintext)
	if err != nil {
		return decimal.Zero, apperror.ErrDecryption(fmt.Errorf("stored balance is not a decimal: %w", err))
	}
	return balance, nil
}
