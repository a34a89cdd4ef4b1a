package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dkeller/ledgerdesk/internal/api"
	"github.com/dkeller/ledgerdesk/internal/database/repository"
)

func transactionJSON(t repository.Transaction) api.Transaction {
	return api.Transaction{
		ID:              t.ID,
		Description:     t.Description,
		Date:            t.Date,
		Amount:          float64(t.AmountCents) / 100,
		DebitAccountID:  t.DebitAccountID,
		CreditAccountID: t.CreditAccountID,
		DebitAccount: api.AccountRef{
			ID: t.Debit.ID, Name: t.Debit.Name, Type: api.AccountType(t.Debit.Type),
		},
		CreditAccount: api.AccountRef{
			ID: t.Credit.ID, Name: t.Credit.Name, Type: api.AccountType(t.Credit.Type),
		},
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid account_id", codeNotFound)
			return
		}
		accountID = id
	}

	rows, err := s.txns.ListActive(r.Context(), accountID)
	if err != nil {
		s.log.Error("list transactions", "err", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error fetching transactions: %v", err), codeDatabaseError)
		return
	}
	out := make([]api.Transaction, 0, len(rows))
	for _, t := range rows {
		out = append(out, transactionJSON(t))
	}
	respondData(w, http.StatusOK, out, "")
}

// transactionRequest holds the writable transaction fields as pointers so
// missing keys can be told apart from zero values.
type transactionRequest struct {
	Description     *string  `json:"description"`
	Date            *string  `json:"date"`
	Amount          *float64 `json:"amount"`
	DebitAccountID  *int64   `json:"debitAccountId"`
	CreditAccountID *int64   `json:"creditAccountId"`
}

// validate normalizes the request, returning amount in cents and the
// ISO date, or writes the rejection and reports false.
func (req transactionRequest) validate(w http.ResponseWriter) (cents int64, date string, ok bool) {
	missing := missingFields(map[string]bool{
		"description":     req.Description != nil,
		"date":            req.Date != nil,
		"amount":          req.Amount != nil,
		"debitAccountId":  req.DebitAccountID != nil,
		"creditAccountId": req.CreditAccountID != nil,
	})
	if missing != "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: "+missing, codeMissingFields)
		return 0, "", false
	}

	amount := *req.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		respondError(w, http.StatusBadRequest, "Amount must be a valid number", codeInvalidAmount)
		return 0, "", false
	}

	parsed, err := time.Parse("2006-01-02", *req.Date)
	if err != nil {
		// accept full ISO timestamps the way the web client sends them
		parsed, err = time.Parse(time.RFC3339, *req.Date)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format", codeInvalidDate)
		return 0, "", false
	}

	if *req.DebitAccountID == *req.CreditAccountID {
		respondError(w, http.StatusBadRequest, "Debit and credit accounts cannot be the same", codeSameAccounts)
		return 0, "", false
	}

	return int64(math.Round(amount * 100)), parsed.Format("2006-01-02"), true
}

// accountsExist verifies both legs reference active accounts.
func (s *Server) accountsExist(ctx context.Context, w http.ResponseWriter, ids ...int64) bool {
	for _, id := range ids {
		if _, err := s.accounts.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("Account %d not found", id), codeNotFound)
			} else {
				respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error checking account: %v", err), codeDatabaseError)
			}
			return false
		}
	}
	return true
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Request must be JSON", "INVALID_CONTENT_TYPE")
		return
	}
	cents, date, ok := req.validate(w)
	if !ok {
		return
	}
	ctx := r.Context()
	if !s.accountsExist(ctx, w, *req.DebitAccountID, *req.CreditAccountID) {
		return
	}

	created, err := s.txns.Create(ctx, *req.Description, date, cents, *req.DebitAccountID, *req.CreditAccountID)
	if err != nil {
		s.log.Error("create transaction", "err", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error creating transaction: %v", err), codeDatabaseError)
		return
	}
	s.log.Info("transaction created", "id", created.ID, "amount_cents", created.AmountCents)
	respondData(w, http.StatusCreated, transactionJSON(created), "Transaction created successfully")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Request must be JSON", "INVALID_CONTENT_TYPE")
		return
	}
	cents, date, ok := req.validate(w)
	if !ok {
		return
	}

	ctx := r.Context()
	if _, err := s.txns.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Transaction not found", codeNotFound)
		} else {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating transaction: %v", err), codeDatabaseError)
		}
		return
	}
	if !s.accountsExist(ctx, w, *req.DebitAccountID, *req.CreditAccountID) {
		return
	}

	if err := s.txns.Update(ctx, id, *req.Description, date, cents, *req.DebitAccountID, *req.CreditAccountID); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating transaction: %v", err), codeDatabaseError)
		return
	}
	updated, err := s.txns.GetByID(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating transaction: %v", err), codeDatabaseError)
		return
	}
	respondData(w, http.StatusOK, transactionJSON(updated), "Transaction updated successfully")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	t, err := s.txns.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Transaction not found", codeNotFound)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting transaction: %v", err), codeDatabaseError)
		return
	}

	if err := s.txns.Deactivate(ctx, id); err != nil {
		s.log.Error("delete transaction", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting transaction: %v", err), codeDatabaseError)
		return
	}

	// report both legs' recomputed balances so callers can update displays
	// without waiting for a full refetch
	debitBal, err := s.accounts.Balance(ctx, t.DebitAccountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting transaction: %v", err), codeDatabaseError)
		return
	}
	creditBal, err := s.accounts.Balance(ctx, t.CreditAccountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting transaction: %v", err), codeDatabaseError)
		return
	}

	s.log.Info("transaction deleted", "id", id)
	respondData(w, http.StatusOK, api.DeleteTransactionResult{
		DebitAccount:  api.BalanceUpdate{ID: t.DebitAccountID, Balance: float64(debitBal) / 100},
		CreditAccount: api.BalanceUpdate{ID: t.CreditAccountID, Balance: float64(creditBal) / 100},
	}, "Transaction deleted successfully")
}
