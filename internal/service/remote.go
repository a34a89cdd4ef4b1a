package service

import (
	"context"

	"github.com/dkeller/ledgerdesk/internal/api"
)

// Remote is the ledger service surface the coordinator needs. *api.Client
// satisfies it; tests substitute fakes.
type Remote interface {
	FetchAccountGroups(ctx context.Context) (api.AccountGroups, error)
	FetchTransactions(ctx context.Context, accountID int64) ([]api.Transaction, error)

	CreateAccount(ctx context.Context, name string, accType api.AccountType) (api.Account, error)
	UpdateAccount(ctx context.Context, id int64, name string) (api.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	CreateTransaction(ctx context.Context, in api.TransactionInput) (api.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, in api.TransactionInput) (api.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (api.DeleteTransactionResult, error)
}
