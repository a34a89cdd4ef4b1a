// Package api is the typed client for the ledger service's HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Error is a failure reported by the ledger service, either a non-success
// envelope or a transport problem.
type Error struct {
	Code    string
	Message string
	Status  int // HTTP status, 0 for transport failures
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// envelope is the service's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Err     string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// Client talks to the ledger service at BaseURL (e.g. "http://127.0.0.1:8417/api").
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client using http.DefaultClient.
func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{Message: fmt.Sprintf("malformed response: %v", err), Status: resp.StatusCode}
	}
	if !env.Success {
		msg := env.Err
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Code: env.Code, Message: msg, Status: resp.StatusCode}
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Message: fmt.Sprintf("malformed payload: %v", err), Status: resp.StatusCode}
		}
	}
	return nil
}

// FetchAccountGroups returns all active accounts grouped by type.
func (c *Client) FetchAccountGroups(ctx context.Context) (AccountGroups, error) {
	var g AccountGroups
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &g); err != nil {
		return AccountGroups{}, err
	}
	return g, nil
}

// FetchTransactions returns active transactions, newest first. A non-zero
// accountID restricts the list to transactions touching that account.
func (c *Client) FetchTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	path := "/transactions"
	if accountID != 0 {
		path += "?account_id=" + url.QueryEscape(strconv.FormatInt(accountID, 10))
	}
	var txns []Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (c *Client) CreateAccount(ctx context.Context, name string, accType AccountType) (Account, error) {
	var a Account
	payload := map[string]any{"name": name, "type": string(accType)}
	if err := c.do(ctx, http.MethodPost, "/accounts", payload, &a); err != nil {
		return Account{}, err
	}
	return a, nil
}

func (c *Client) UpdateAccount(ctx context.Context, id int64, name string) (Account, error) {
	var a Account
	payload := map[string]any{"name": name}
	if err := c.do(ctx, http.MethodPatch, "/accounts/"+strconv.FormatInt(id, 10), payload, &a); err != nil {
		return Account{}, err
	}
	return a, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, error) {
	var t Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", in, &t); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, in TransactionInput) (Transaction, error) {
	var t Transaction
	if err := c.do(ctx, http.MethodPatch, "/transactions/"+strconv.FormatInt(id, 10), in, &t); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) (DeleteTransactionResult, error) {
	var res DeleteTransactionResult
	if err := c.do(ctx, http.MethodDelete, "/transactions/"+strconv.FormatInt(id, 10), nil, &res); err != nil {
		return DeleteTransactionResult{}, err
	}
	return res, nil
}
