package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txSelect = `
SELECT t.id, t.description, t.date, t.amount_cents,
 t.debit_account_id, t.credit_account_id,
 da.name, da.type, ca.name, ca.type,
 t.is_active, t.created_at
FROM transactions t
JOIN accounts da ON da.id = t.debit_account_id
JOIN accounts ca ON ca.id = t.credit_account_id`

func scanTransaction(scan func(dest ...any) error) (Transaction, error) {
	var t Transaction
	err := scan(
		&t.ID, &t.Description, &t.Date, &t.AmountCents,
		&t.DebitAccountID, &t.CreditAccountID,
		&t.Debit.Name, &t.Debit.Type, &t.Credit.Name, &t.Credit.Type,
		&t.IsActive, &t.CreatedAt,
	)
	if err != nil {
		return Transaction{}, err
	}
	t.Debit.ID = t.DebitAccountID
	t.Credit.ID = t.CreditAccountID
	return t, nil
}

// Create inserts an active transaction and returns the stored row.
func (r *TransactionRepo) Create(ctx context.Context, description, date string, amountCents, debitID, creditID int64) (Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(description, date, amount_cents, debit_account_id, credit_account_id)
	VALUES (?, ?, ?, ?, ?)`,
		description, date, amountCents, debitID, creditID)
	if err != nil {
		return Transaction{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Transaction{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns the active transaction with id, or ErrNotFound.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (Transaction, error) {
	row := r.db.QueryRowContext(ctx, txSelect+` WHERE t.id = ? AND t.is_active = 1`, id)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// ListActive returns active transactions newest first. A non-zero accountID
// restricts the list to transactions with that account on either leg.
func (r *TransactionRepo) ListActive(ctx context.Context, accountID int64) ([]Transaction, error) {
	query := txSelect + ` WHERE t.is_active = 1`
	var args []any
	if accountID != 0 {
		query += ` AND (t.debit_account_id = ? OR t.credit_account_id = ?)`
		args = append(args, accountID, accountID)
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites all writable fields of an active transaction.
func (r *TransactionRepo) Update(ctx context.Context, id int64, description, date string, amountCents, debitID, creditID int64) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE transactions
	SET description = ?, date = ?, amount_cents = ?, debit_account_id = ?, credit_account_id = ?
	WHERE id = ? AND is_active = 1`,
		description, date, amountCents, debitID, creditID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Deactivate soft-deletes a transaction.
func (r *TransactionRepo) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
