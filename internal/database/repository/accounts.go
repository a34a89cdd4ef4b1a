package repository

import (
	"context"
	"database/sql"
	"errors"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Create inserts an active account and returns the stored row.
func (r *AccountRepo) Create(ctx context.Context, name, accType string) (Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts(name, type) VALUES (?, ?)`, name, accType)
	if err != nil {
		return Account{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Account{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns the active account with id, or ErrNotFound.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, is_active, created_at FROM accounts WHERE id = ? AND is_active = 1`,
		id).Scan(&a.ID, &a.Name, &a.Type, &a.IsActive, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// ListActive returns active accounts ordered by name.
func (r *AccountRepo) ListActive(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, is_active, created_at FROM accounts WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// NameTaken reports whether another active account already uses name
// (case-insensitive). excludeID skips one account, 0 to check all.
func (r *AccountRepo) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE is_active = 1 AND lower(name) = lower(?) AND id <> ?`,
		name, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rename updates an active account's name.
func (r *AccountRepo) Rename(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ? WHERE id = ? AND is_active = 1`, name, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Deactivate soft-deletes an account.
func (r *AccountRepo) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Balance returns the account's balance in cents, oriented by the normal
// balance of its type: debit-normal accounts grow with debits, credit-normal
// with credits. Only active transactions count.
func (r *AccountRepo) Balance(ctx context.Context, id int64) (int64, error) {
	var accType string
	err := r.db.QueryRowContext(ctx,
		`SELECT type FROM accounts WHERE id = ?`, id).Scan(&accType)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var debits, credits int64
	err = r.db.QueryRowContext(ctx, `
	SELECT
	 COALESCE(SUM(CASE WHEN debit_account_id = ? THEN amount_cents ELSE 0 END), 0),
	 COALESCE(SUM(CASE WHEN credit_account_id = ? THEN amount_cents ELSE 0 END), 0)
	FROM transactions WHERE is_active = 1`, id, id).Scan(&debits, &credits)
	if err != nil {
		return 0, err
	}

	if debitNormal(accType) {
		return debits - credits, nil
	}
	return credits - debits, nil
}

func debitNormal(accType string) bool {
	return accType == "ASSET" || accType == "EXPENSE"
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
