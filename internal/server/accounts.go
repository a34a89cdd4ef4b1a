package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkeller/ledgerdesk/internal/api"
	"github.com/dkeller/ledgerdesk/internal/database/repository"
)

func (s *Server) accountJSON(ctx context.Context, a repository.Account) (api.Account, error) {
	cents, err := s.accounts.Balance(ctx, a.ID)
	if err != nil {
		return api.Account{}, err
	}
	t := api.AccountType(a.Type)
	return api.Account{
		ID:            a.ID,
		Name:          a.Name,
		Type:          t,
		Balance:       float64(cents) / 100,
		NormalBalance: t.Normal(),
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// handleListAccounts returns all active accounts grouped by type.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := s.accounts.ListActive(ctx)
	if err != nil {
		s.log.Error("list accounts", "err", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error fetching accounts: %v", err), codeDatabaseError)
		return
	}

	groups := api.AccountGroups{
		Asset:     []api.Account{},
		Liability: []api.Account{},
		Equity:    []api.Account{},
		Income:    []api.Account{},
		Expense:   []api.Account{},
	}
	for _, row := range rows {
		a, err := s.accountJSON(ctx, row)
		if err != nil {
			s.log.Error("account balance", "id", row.ID, "err", err)
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error fetching accounts: %v", err), codeDatabaseError)
			return
		}
		switch a.Type {
		case api.TypeAsset:
			groups.Asset = append(groups.Asset, a)
		case api.TypeLiability:
			groups.Liability = append(groups.Liability, a)
		case api.TypeEquity:
			groups.Equity = append(groups.Equity, a)
		case api.TypeIncome:
			groups.Income = append(groups.Income, a)
		case api.TypeExpense:
			groups.Expense = append(groups.Expense, a)
		}
	}
	respondData(w, http.StatusOK, groups, "")
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name *string `json:"name"`
		Type *string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Request must be JSON", "INVALID_CONTENT_TYPE")
		return
	}
	if missing := missingFields(map[string]bool{"name": req.Name != nil, "type": req.Type != nil}); missing != "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: "+missing, codeMissingFields)
		return
	}

	accType := api.AccountType(strings.ToUpper(strings.TrimSpace(*req.Type)))
	if !accType.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid account type", codeInvalidAccountType)
		return
	}

	ctx := r.Context()
	taken, err := s.accounts.NameTaken(ctx, *req.Name, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error creating account: %v", err), codeDatabaseError)
		return
	}
	if taken {
		respondError(w, http.StatusBadRequest, "Account with this name already exists", codeDuplicateAccount)
		return
	}

	created, err := s.accounts.Create(ctx, *req.Name, string(accType))
	if err != nil {
		s.log.Error("create account", "err", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error creating account: %v", err), codeDatabaseError)
		return
	}
	a, err := s.accountJSON(ctx, created)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error creating account: %v", err), codeDatabaseError)
		return
	}
	s.log.Info("account created", "id", a.ID, "name", a.Name, "type", a.Type)
	respondData(w, http.StatusCreated, a, "Account created successfully")
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Request must be JSON", "INVALID_CONTENT_TYPE")
		return
	}
	if req.Name == nil {
		respondError(w, http.StatusBadRequest, "Missing required fields: name", codeMissingFields)
		return
	}

	ctx := r.Context()
	account, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Account not found", codeNotFound)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating account: %v", err), codeDatabaseError)
		return
	}

	newName := *req.Name
	if account.Name == newName {
		a, err := s.accountJSON(ctx, account)
		if err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating account: %v", err), codeDatabaseError)
			return
		}
		respondData(w, http.StatusOK, a, "Account unchanged")
		return
	}

	taken, err := s.accounts.NameTaken(ctx, newName, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating account: %v", err), codeDatabaseError)
		return
	}
	if taken {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Account with the name '%s' already exists", newName), codeDuplicateAccount)
		return
	}

	if err := s.accounts.Rename(ctx, id, newName); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating account: %v", err), codeDatabaseError)
		return
	}
	account.Name = newName
	a, err := s.accountJSON(ctx, account)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating account: %v", err), codeDatabaseError)
		return
	}
	respondData(w, http.StatusOK, a, "Account updated successfully")
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	err := s.accounts.Deactivate(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Account not found", codeNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete account", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting account: %v", err), codeDatabaseError)
		return
	}
	s.log.Info("account deleted", "id", id)
	respondData(w, http.StatusOK, nil, "Account deleted successfully")
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, "Not found", codeNotFound)
		return 0, false
	}
	return id, true
}

func missingFields(present map[string]bool) string {
	var missing []string
	// stable order for the message
	for _, f := range []string{"name", "type", "description", "date", "amount", "debitAccountId", "creditAccountId"} {
		if has, tracked := present[f]; tracked && !has {
			missing = append(missing, f)
		}
	}
	return strings.Join(missing, ", ")
}
