package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeller/ledgerdesk/internal/database"
)

func newTestDB(t *testing.T) (*AccountRepo, *TransactionRepo) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewAccountRepo(db), NewTransactionRepo(db)
}

func TestAccountLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, _ := newTestDB(t)

	created, err := accounts.Create(ctx, "Checking", "ASSET")
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.True(t, created.IsActive)

	taken, err := accounts.NameTaken(ctx, "checking", 0)
	require.NoError(t, err)
	require.True(t, taken, "name check is case-insensitive")

	taken, err = accounts.NameTaken(ctx, "Checking", created.ID)
	require.NoError(t, err)
	require.False(t, taken, "an account does not collide with itself")

	require.NoError(t, accounts.Rename(ctx, created.ID, "Everyday"))
	got, err := accounts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Everyday", got.Name)

	require.NoError(t, accounts.Deactivate(ctx, created.ID))
	_, err = accounts.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// soft-deleted: a new account may reuse the name
	taken, err = accounts.NameTaken(ctx, "Everyday", 0)
	require.NoError(t, err)
	require.False(t, taken)
}

func TestAccountListOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, _ := newTestDB(t)

	for _, name := range []string{"Rent", "Checking", "Salary"} {
		_, err := accounts.Create(ctx, name, "ASSET")
		require.NoError(t, err)
	}

	list, err := accounts.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "Checking", list[0].Name)
	require.Equal(t, "Rent", list[1].Name)
	require.Equal(t, "Salary", list[2].Name)
}

func TestBalanceOrientation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, txns := newTestDB(t)

	checking, err := accounts.Create(ctx, "Checking", "ASSET")
	require.NoError(t, err)
	salary, err := accounts.Create(ctx, "Salary", "INCOME")
	require.NoError(t, err)
	rent, err := accounts.Create(ctx, "Rent", "EXPENSE")
	require.NoError(t, err)

	// paycheck: debit Checking, credit Salary
	_, err = txns.Create(ctx, "Paycheck", "2026-08-01", 500000, checking.ID, salary.ID)
	require.NoError(t, err)
	// rent: debit Rent, credit Checking
	_, err = txns.Create(ctx, "August rent", "2026-08-02", 180000, rent.ID, checking.ID)
	require.NoError(t, err)

	bal, err := accounts.Balance(ctx, checking.ID)
	require.NoError(t, err)
	require.Equal(t, int64(320000), bal, "asset grows with debits, shrinks with credits")

	bal, err = accounts.Balance(ctx, salary.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500000), bal, "income grows with credits")

	bal, err = accounts.Balance(ctx, rent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(180000), bal, "expense grows with debits")
}

func TestDeactivatedTransactionExcludedFromBalance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, txns := newTestDB(t)

	checking, err := accounts.Create(ctx, "Checking", "ASSET")
	require.NoError(t, err)
	salary, err := accounts.Create(ctx, "Salary", "INCOME")
	require.NoError(t, err)

	created, err := txns.Create(ctx, "Paycheck", "2026-08-01", 500000, checking.ID, salary.ID)
	require.NoError(t, err)

	require.NoError(t, txns.Deactivate(ctx, created.ID))
	_, err = txns.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	bal, err := accounts.Balance(ctx, checking.ID)
	require.NoError(t, err)
	require.Zero(t, bal)
}

func TestTransactionListFilterAndOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, txns := newTestDB(t)

	checking, err := accounts.Create(ctx, "Checking", "ASSET")
	require.NoError(t, err)
	salary, err := accounts.Create(ctx, "Salary", "INCOME")
	require.NoError(t, err)
	rent, err := accounts.Create(ctx, "Rent", "EXPENSE")
	require.NoError(t, err)

	_, err = txns.Create(ctx, "Paycheck", "2026-08-01", 500000, checking.ID, salary.ID)
	require.NoError(t, err)
	_, err = txns.Create(ctx, "August rent", "2026-08-02", 180000, rent.ID, checking.ID)
	require.NoError(t, err)

	all, err := txns.ListActive(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "August rent", all[0].Description, "newest first")
	require.Equal(t, "Salary", all[1].Credit.Name, "legs carry account summaries")

	// checking appears on either leg
	filtered, err := txns.ListActive(ctx, checking.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 2)

	filtered, err = txns.ListActive(ctx, salary.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "Paycheck", filtered[0].Description)
}

func TestTransactionUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, txns := newTestDB(t)

	checking, err := accounts.Create(ctx, "Checking", "ASSET")
	require.NoError(t, err)
	rent, err := accounts.Create(ctx, "Rent", "EXPENSE")
	require.NoError(t, err)

	created, err := txns.Create(ctx, "Rnet", "2026-08-02", 180000, rent.ID, checking.ID)
	require.NoError(t, err)

	require.NoError(t, txns.Update(ctx, created.ID, "Rent", "2026-08-03", 185000, rent.ID, checking.ID))
	got, err := txns.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Rent", got.Description)
	require.Equal(t, "2026-08-03", got.Date)
	require.Equal(t, int64(185000), got.AmountCents)

	require.ErrorIs(t, txns.Update(ctx, 9999, "x", "2026-01-01", 1, rent.ID, checking.ID), ErrNotFound)
}
