package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist or is soft-deleted.
var ErrNotFound = errors.New("not found")

// Account represents an account row. Amounts are integer cents.
type Account struct {
	ID        int64
	Name      string
	Type      string
	IsActive  bool
	CreatedAt time.Time
}

// AccountSummary is the denormalized account reference embedded in
// transaction listings.
type AccountSummary struct {
	ID   int64
	Name string
	Type string
}

// Transaction represents a transaction row plus the summaries of both legs.
// Date is the ISO date string as stored.
type Transaction struct {
	ID              int64
	Description     string
	Date            string
	AmountCents     int64
	DebitAccountID  int64
	CreditAccountID int64
	Debit           AccountSummary
	Credit          AccountSummary
	IsActive        bool
	CreatedAt       time.Time
}
