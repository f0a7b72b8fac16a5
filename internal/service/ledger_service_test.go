package service

import (
	"context"
	"errors"
	"testing"

	"balance-ledger-bot/internal/core/domain"
	"balance-ledger-bot/internal/core/ports/mocks"
	"balance-ledger-bot/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc         *LedgerServiceImpl
	accountRepo *mocks.MockAccountRepository
	opRepo      *mocks.MockOperationRepository
	encSvc      *mocks.MockEncryptionService
	transactor  *mocks.MockDBTransactor
	auditSvc    *mocks.MockAuditService
	ctrl        *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		opRepo:      mocks.NewMockOperationRepository(ctrl),
		encSvc:      mocks.NewMockEncryptionService(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		auditSvc:    mocks.NewMockAuditService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewLedgerService(
		d.accountRepo, d.opRepo, d.encSvc, d.transactor, d.auditSvc, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

const userID = int64(42)

// ==================== First contact ====================

func TestLedgerService_Handle_FirstContactCreatesAccount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(false, nil)
	// Initial balance and the zero operation record are both "0.00".
	d.encSvc.EXPECT().Encrypt("0.00").Return("enc_zero", nil).Times(2)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, account *domain.Account) error {
			assert.Equal(t, userID, account.TelegramID)
			assert.Equal(t, "enc_zero", account.EncryptedBalance)
			return nil
		})
	d.opRepo.EXPECT().Append(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, op *domain.Operation) error {
			assert.Equal(t, userID, op.UserID)
			assert.Equal(t, "enc_zero", op.AmountEncrypted)
			return nil
		})
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelInfo, userID, domain.OpCreateUser, gomock.Any())

	// The first message's text is discarded, even when it looks like a command.
	outcome := d.svc.Handle(ctx, userID, "100")
	assert.Equal(t, domain.OutcomeWelcome, outcome.Kind)
	assert.True(t, outcome.Balance.IsZero())
}

func TestLedgerService_Handle_CreateAccountFailure(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(false, nil)
	d.encSvc.EXPECT().Encrypt("0.00").Return("enc_zero", nil).Times(2)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(errors.New("duplicate key"))
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelError, userID, domain.OpCreateUserError, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "hello")
	assert.Equal(t, domain.OutcomeSystemError, outcome.Kind)
	assert.Equal(t, domain.OpCreateUserError, outcome.ErrCode)
}

func TestLedgerService_Handle_ExistenceCheckFailure(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(false, errors.New("connection refused"))
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelError, userID, domain.OpAccountCheckError, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "10")
	assert.Equal(t, domain.OutcomeSystemError, outcome.Kind)
	assert.Equal(t, domain.OpAccountCheckError, outcome.ErrCode)
}

// ==================== Deposit ====================

func TestLedgerService_Handle_Deposit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetForUpdate(ctx, tx, userID).Return(&domain.Account{
		TelegramID:       userID,
		EncryptedBalance: "enc_bal",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_bal").Return("5.25", nil)
	d.encSvc.EXPECT().Encrypt("15.75").Return("enc_new", nil)
	d.encSvc.EXPECT().Encrypt("10.5").Return("enc_delta", nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, "enc_new").Return(nil)
	d.opRepo.EXPECT().Append(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, op *domain.Operation) error {
			assert.Equal(t, "enc_delta", op.AmountEncrypted)
			return nil
		})
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelInfo, userID, domain.OpAddBalance, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "10.50")
	require.Equal(t, domain.OutcomeDeposited, outcome.Kind)
	assert.True(t, outcome.Amount.Equal(decimal.RequireFromString("10.50")))
	assert.True(t, outcome.Balance.Equal(decimal.RequireFromString("15.75")))
}

func TestLedgerService_Handle_DepositStoreFailure(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetForUpdate(ctx, tx, userID).Return(&domain.Account{
		TelegramID:       userID,
		EncryptedBalance: "enc_bal",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_bal").Return("0", nil)
	d.encSvc.EXPECT().Encrypt("10").Return("enc_new", nil).Times(2)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, "enc_new").Return(errors.New("write failed"))
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelError, userID, domain.OpAddBalanceError, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "10")
	assert.Equal(t, domain.OutcomeSystemError, outcome.Kind)
	assert.Equal(t, domain.OpAddBalanceError, outcome.ErrCode)
}

// ==================== Withdraw ====================

func TestLedgerService_Handle_Withdraw(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetForUpdate(ctx, tx, userID).Return(&domain.Account{
		TelegramID:       userID,
		EncryptedBalance: "enc_bal",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_bal").Return("10.5", nil)
	d.encSvc.EXPECT().Encrypt("7.5").Return("enc_new", nil)
	d.encSvc.EXPECT().Encrypt("-3").Return("enc_delta", nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, "enc_new").Return(nil)
	d.opRepo.EXPECT().Append(ctx, tx, gomock.Any()).Return(nil)
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelInfo, userID, domain.OpSubtractBalance, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "-3")
	require.Equal(t, domain.OutcomeWithdrawn, outcome.Kind)
	assert.True(t, outcome.Amount.Equal(decimal.RequireFromString("3")))
	assert.True(t, outcome.Balance.Equal(decimal.RequireFromString("7.5")))
}

func TestLedgerService_Handle_WithdrawInsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(true, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetForUpdate(ctx, tx, userID).Return(&domain.Account{
		TelegramID:       userID,
		EncryptedBalance: "enc_bal",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_bal").Return("10.5", nil)
	// No UpdateBalance, no Append, no Commit: the store stays untouched.
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelError, userID, domain.OpInsufficientFunds, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "-20")
	assert.Equal(t, domain.OutcomeInsufficientFunds, outcome.Kind)
}

// ==================== Query balance ====================

func TestLedgerService_Handle_QueryBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(true, nil)
	d.accountRepo.EXPECT().Get(ctx, userID).Return(&domain.Account{
		TelegramID:       userID,
		EncryptedBalance: "enc_bal",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_bal").Return("10.5", nil)
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelInfo, userID, domain.OpGetBalance, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "0")
	require.Equal(t, domain.OutcomeCurrentBalance, outcome.Kind)
	assert.True(t, outcome.Balance.Equal(decimal.RequireFromString("10.5")))
}

func TestLedgerService_Handle_QueryBalanceCorruptCiphertext(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(true, nil)
	d.accountRepo.EXPECT().Get(ctx, userID).Return(&domain.Account{
		TelegramID:       userID,
		EncryptedBalance: "garbage",
	}, nil)
	d.encSvc.EXPECT().Decrypt("garbage").Return("", apperror.ErrDecryption(errors.New("bad padding")))
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelError, userID, domain.OpGetBalanceError, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "0")
	assert.Equal(t, domain.OutcomeSystemError, outcome.Kind)
	assert.Equal(t, domain.OpGetBalanceError, outcome.ErrCode)
}

// ==================== Invalid input ====================

func TestLedgerService_Handle_InvalidInput(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().Exists(ctx, userID).Return(true, nil)
	d.auditSvc.EXPECT().Audit(ctx, domain.AuditLevelError, userID, domain.OpInvalidInput, gomock.Any())

	outcome := d.svc.Handle(ctx, userID, "abc")
	assert.Equal(t, domain.OutcomeInvalidInput, outcome.Kind)
}
