package service

import (
	"context"

	"github.com/dkeller/ledgerdesk/internal/api"
	"github.com/dkeller/ledgerdesk/internal/query"
)

// Queries binds cache keys to their fetchers so the view layer reads typed
// values instead of handling raw cache entries.
type Queries struct {
	cache  *query.Cache
	remote Remote
}

func NewQueries(cache *query.Cache, remote Remote) *Queries {
	return &Queries{cache: cache, remote: remote}
}

// AccountGroups reads the grouped-accounts query, refreshing in the
// background when the entry is stale or missing.
func (q *Queries) AccountGroups(ctx context.Context) (api.AccountGroups, query.Result) {
	res := q.cache.Read(ctx, query.AccountsKey(), func(ctx context.Context) (any, error) {
		return q.remote.FetchAccountGroups(ctx)
	})
	groups, _ := res.Value.(api.AccountGroups)
	return groups, res
}

// Transactions reads the transaction-list query for accountID (0 = all).
func (q *Queries) Transactions(ctx context.Context, accountID int64) ([]api.Transaction, query.Result) {
	res := q.cache.Read(ctx, query.TransactionsKey(accountID), func(ctx context.Context) (any, error) {
		return q.remote.FetchTransactions(ctx, accountID)
	})
	txns, _ := res.Value.([]api.Transaction)
	return txns, res
}
