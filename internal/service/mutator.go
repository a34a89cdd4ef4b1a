// Package service coordinates reads and writes between the ledger service
// and the query cache: typed query accessors on one side, write operations
// with targeted cache invalidation on the other.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dkeller/ledgerdesk/internal/api"
	"github.com/dkeller/ledgerdesk/internal/query"
)

// Mutator performs writes against the ledger service and, on success,
// invalidates the query families the write can affect. On failure the cache
// is left untouched; nothing is patched optimistically.
type Mutator struct {
	remote Remote
	cache  *query.Cache
	log    *slog.Logger
}

func NewMutator(remote Remote, cache *query.Cache, log *slog.Logger) *Mutator {
	if log == nil {
		log = slog.Default()
	}
	return &Mutator{remote: remote, cache: cache, log: log}
}

// CreateAccount creates an account and invalidates the accounts query.
func (m *Mutator) CreateAccount(ctx context.Context, name string, accType api.AccountType) (api.Account, error) {
	if strings.TrimSpace(name) == "" {
		return api.Account{}, invalid("name", "required")
	}
	if !accType.Valid() {
		return api.Account{}, invalid("type", "unknown account type")
	}
	a, err := m.remote.CreateAccount(ctx, strings.TrimSpace(name), accType)
	if err != nil {
		m.log.Warn("create account failed", "name", name, "err", err)
		return api.Account{}, err
	}
	m.cache.Invalidate(ctx, query.AccountsKey())
	m.log.Debug("account created", "id", a.ID, "name", a.Name)
	return a, nil
}

// UpdateAccount renames an account and invalidates the accounts query.
// Only the name is writable after creation.
func (m *Mutator) UpdateAccount(ctx context.Context, id int64, name string) (api.Account, error) {
	if id == 0 {
		return api.Account{}, invalid("id", "required")
	}
	if strings.TrimSpace(name) == "" {
		return api.Account{}, invalid("name", "required")
	}
	a, err := m.remote.UpdateAccount(ctx, id, strings.TrimSpace(name))
	if err != nil {
		m.log.Warn("update account failed", "id", id, "err", err)
		return api.Account{}, err
	}
	m.cache.Invalidate(ctx, query.AccountsKey())
	return a, nil
}

// DeleteAccount removes an account. Transactions referencing it may be
// affected server-side, so both query families are invalidated.
func (m *Mutator) DeleteAccount(ctx context.Context, id int64) error {
	if id == 0 {
		return invalid("id", "required")
	}
	if err := m.remote.DeleteAccount(ctx, id); err != nil {
		m.log.Warn("delete account failed", "id", id, "err", err)
		return err
	}
	m.cache.Invalidate(ctx, query.AccountsKey())
	m.cache.Invalidate(ctx, query.TransactionsFamily())
	return nil
}

// CreateTransaction posts a transaction. Account balances change with every
// transaction write, so the accounts query is invalidated along with every
// transaction-list variant.
func (m *Mutator) CreateTransaction(ctx context.Context, in api.TransactionInput) (api.Transaction, error) {
	if err := validateTransactionInput(in); err != nil {
		return api.Transaction{}, err
	}
	t, err := m.remote.CreateTransaction(ctx, in)
	if err != nil {
		m.log.Warn("create transaction failed", "err", err)
		return api.Transaction{}, err
	}
	m.invalidateTransactionFamilies(ctx)
	m.log.Debug("transaction created", "id", t.ID)
	return t, nil
}

// UpdateTransaction rewrites all writable fields of a transaction.
func (m *Mutator) UpdateTransaction(ctx context.Context, id int64, in api.TransactionInput) (api.Transaction, error) {
	if id == 0 {
		return api.Transaction{}, invalid("id", "required")
	}
	if err := validateTransactionInput(in); err != nil {
		return api.Transaction{}, err
	}
	t, err := m.remote.UpdateTransaction(ctx, id, in)
	if err != nil {
		m.log.Warn("update transaction failed", "id", id, "err", err)
		return api.Transaction{}, err
	}
	m.invalidateTransactionFamilies(ctx)
	return t, nil
}

// DeleteTransaction removes a transaction and returns the recomputed
// balances of both affected accounts.
func (m *Mutator) DeleteTransaction(ctx context.Context, id int64) (api.DeleteTransactionResult, error) {
	if id == 0 {
		return api.DeleteTransactionResult{}, invalid("id", "required")
	}
	res, err := m.remote.DeleteTransaction(ctx, id)
	if err != nil {
		m.log.Warn("delete transaction failed", "id", id, "err", err)
		return api.DeleteTransactionResult{}, err
	}
	m.invalidateTransactionFamilies(ctx)
	return res, nil
}

func (m *Mutator) invalidateTransactionFamilies(ctx context.Context) {
	m.cache.Invalidate(ctx, query.TransactionsFamily())
	m.cache.Invalidate(ctx, query.AccountsKey())
}

func validateTransactionInput(in api.TransactionInput) error {
	if strings.TrimSpace(in.Description) == "" {
		return invalid("description", "required")
	}
	if in.Date == "" {
		return invalid("date", "required")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return invalid("date", "must be YYYY-MM-DD")
	}
	if in.Amount <= 0 {
		return invalid("amount", "must be positive")
	}
	if in.DebitAccountID == 0 {
		return invalid("debitAccountId", "required")
	}
	if in.CreditAccountID == 0 {
		return invalid("creditAccountId", "required")
	}
	if in.DebitAccountID == in.CreditAccountID {
		return invalid("creditAccountId", "debit and credit accounts must differ")
	}
	return nil
}
