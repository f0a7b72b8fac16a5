package integration

import (
	"context"
	"fmt"
	"sync"

	"balance-ledger-bot/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func (r *inMemoryAccountRepo) Exists(ctx context.Context, telegramID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.accounts[telegramID]
	return ok, nil
}

func (r *inMemoryAccountRepo) Get(ctx context.Context, telegramID int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[telegramID]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *inMemoryAccountRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, telegramID int64) (*domain.Account, error) {
	return r.Get(ctx, telegramID)
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.TelegramID]; ok {
		return fmt.Errorf("account already exists: %d", account.TelegramID)
	}
	copied := *account
	r.accounts[account.TelegramID] = &copied
	return nil
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, telegramID int64, encryptedBalance string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[telegramID]
	if !ok {
		return fmt.Errorf("account not found: %d", telegramID)
	}
	a.EncryptedBalance = encryptedBalance
	return nil
}

// --- In-Memory Operation Repo ---

type inMemoryOperationRepo struct {
	mu     sync.RWMutex
	nextID int64
	ops    []domain.Operation
}

func newInMemoryOperationRepo() *inMemoryOperationRepo {
	return &inMemoryOperationRepo{nextID: 1}
}

func (r *inMemoryOperationRepo) Append(ctx context.Context, tx pgx.Tx, op *domain.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *op
	stored.ID = r.nextID
	r.nextID++
	r.ops = append(r.ops, stored)
	return nil
}

func (r *inMemoryOperationRepo) ListByUser(ctx context.Context, telegramID int64) ([]domain.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Operation
	for _, op := range r.ops {
		if op.UserID == telegramID {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *inMemoryOperationRepo) CountByUser(ctx context.Context, telegramID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, op := range r.ops {
		if op.UserID == telegramID {
			count++
		}
	}
	return count, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryAuditRepo) byOperation(operation string) []domain.AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.Operation == operation {
			out = append(out, e)
		}
	}
	return out
}

func (r *inMemoryAuditRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transactions with a single mutex, standing in
// for the row lock the real store takes. Begin blocks until the previous
// transaction commits or rolls back.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: t.mu.Unlock}, nil
}

// lockedTx is a pgx.Tx implementation that holds the transactor lock until
// Commit or Rollback, whichever comes first.
type lockedTx struct {
	release func()
	done    bool
}

func (t *lockedTx) finish() error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.release()
	return nil
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { return t.finish() }
func (t *lockedTx) Rollback(ctx context.Context) error {
	if err := t.finish(); err != nil {
		return pgx.ErrTxClosed
	}
	return nil
}
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
