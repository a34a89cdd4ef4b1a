package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchAccountGroups(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/accounts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"asset": [{"id": 1, "name": "Checking", "type": "ASSET", "balance": 125.5, "normalBalance": "DEBIT", "isActive": true}],
				"liability": [], "equity": [], "income": [], "expense": []
			}
		}`))
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL + "/api")
	groups, err := c.FetchAccountGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups.Asset, 1)
	require.Equal(t, "Checking", groups.Asset[0].Name)
	require.Equal(t, 125.5, groups.Asset[0].Balance)
	require.Empty(t, groups.Expense)
}

func TestFetchTransactionsFilter(t *testing.T) {
	t.Parallel()

	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"success": true, "data": []}`))
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL)
	_, err := c.FetchTransactions(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, "account_id=42", gotQuery)

	_, err = c.FetchTransactions(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, gotQuery, "zero account id means the unfiltered list")
}

func TestErrorEnvelope(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success": false, "error": "Account with this name already exists", "code": "DUPLICATE_ACCOUNT"}`))
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL)
	_, err := c.CreateAccount(context.Background(), "Checking", TypeAsset)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "DUPLICATE_ACCOUNT", apiErr.Code)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Error(), "already exists")
}

func TestCreateTransactionBody(t *testing.T) {
	t.Parallel()

	var got TransactionInput
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success": true, "data": {"id": 9, "description": "Rent"}}`))
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL)
	in := TransactionInput{
		Description:     "Rent",
		Date:            "2026-08-01",
		Amount:          1200,
		DebitAccountID:  2,
		CreditAccountID: 1,
	}
	created, err := c.CreateTransaction(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, in, got)
	require.Equal(t, int64(9), created.ID)
}

func TestTransportFailureWrapsAsError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // force connection refused

	c := New(ts.URL)
	err := c.DeleteAccount(context.Background(), 1)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Zero(t, apiErr.Status)
	require.Empty(t, apiErr.Code)
}
