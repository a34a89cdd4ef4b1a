// Package tui is the terminal view layer: it renders the cached queries,
// routes key input into session-state transitions, and runs mutations as
// background commands.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dkeller/ledgerdesk/internal/api"
	"github.com/dkeller/ledgerdesk/internal/config"
	"github.com/dkeller/ledgerdesk/internal/query"
	"github.com/dkeller/ledgerdesk/internal/service"
	"github.com/dkeller/ledgerdesk/internal/session"
)

type pane int

const (
	paneAccounts pane = iota
	paneTransactions
)

// accountRow is one sidebar line: a type header or an account.
type accountRow struct {
	header  string
	account api.Account
}

func (r accountRow) isHeader() bool { return r.header != "" }

// App ties the query cache, mutation coordinator, and session state to the
// terminal.
type App struct {
	ctx     context.Context
	cfg     config.Config
	queries *service.Queries
	mutator *service.Mutator
	cache   *query.Cache
	session *session.State
	changes <-chan query.Key

	groups    api.AccountGroups
	groupsRes query.Result
	txns      []api.Transaction
	txnsRes   query.Result

	rows       []accountRow
	acctCursor int
	txCursor   int
	focus      pane

	acctForm *accountForm
	txForm   *transactionForm

	status    string
	statusErr bool
	width     int
	height    int
}

func New(ctx context.Context, cfg config.Config, queries *service.Queries, mutator *service.Mutator, cache *query.Cache, st *session.State, changes <-chan query.Key) *App {
	return &App{
		ctx:     ctx,
		cfg:     cfg,
		queries: queries,
		mutator: mutator,
		cache:   cache,
		session: st,
		changes: changes,
	}
}

func (a *App) Init() tea.Cmd {
	a.cache.Observe(query.AccountsKey())
	a.cache.Observe(query.TransactionsKey(a.session.FilterAccountID()))
	a.reload()
	return waitForChange(a.changes)
}

// reload re-reads both queries. Read itself decides whether a background
// fetch is needed; this just refreshes the snapshots the view renders.
func (a *App) reload() {
	a.groups, a.groupsRes = a.queries.AccountGroups(a.ctx)
	a.txns, a.txnsRes = a.queries.Transactions(a.ctx, a.session.FilterAccountID())
	a.rebuildRows()
	a.clampCursors()
}

func (a *App) rebuildRows() {
	a.rows = a.rows[:0]
	for _, t := range api.AccountTypes {
		accts := a.groups.ByType(t)
		if len(accts) == 0 {
			continue
		}
		a.rows = append(a.rows, accountRow{header: string(t)})
		for _, acc := range accts {
			a.rows = append(a.rows, accountRow{account: acc})
		}
	}
}

func (a *App) clampCursors() {
	if a.acctCursor >= len(a.rows) {
		a.acctCursor = len(a.rows) - 1
	}
	if a.acctCursor < 0 {
		a.acctCursor = 0
	}
	if a.txCursor >= len(a.txns) {
		a.txCursor = len(a.txns) - 1
	}
	if a.txCursor < 0 {
		a.txCursor = 0
	}
	a.syncSelection()
}

// syncSelection mirrors the cursors into the session state.
func (a *App) syncSelection() {
	if acc, ok := a.selectedAccount(); ok {
		a.session.SetSelectedAccount(acc.ID)
	} else {
		a.session.SetSelectedAccount(0)
	}
	if t, ok := a.selectedTransaction(); ok {
		a.session.SetSelectedTransaction(t.ID)
	} else {
		a.session.SetSelectedTransaction(0)
	}
}

func (a *App) selectedAccount() (api.Account, bool) {
	if a.acctCursor < 0 || a.acctCursor >= len(a.rows) || a.rows[a.acctCursor].isHeader() {
		return api.Account{}, false
	}
	return a.rows[a.acctCursor].account, true
}

func (a *App) selectedTransaction() (api.Transaction, bool) {
	if a.txCursor < 0 || a.txCursor >= len(a.txns) {
		return api.Transaction{}, false
	}
	return a.txns[a.txCursor], true
}

// setFilter swaps the observed transaction key to the new filter.
func (a *App) setFilter(accountID int64) {
	old := a.session.FilterAccountID()
	if old == accountID {
		return
	}
	a.cache.Release(query.TransactionsKey(old))
	a.session.SetFilterAccount(accountID)
	a.cache.Observe(query.TransactionsKey(accountID))
	a.txCursor = 0
	a.reload()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.FocusMsg:
		// regained focus: stale observed entries refetch in the background
		a.cache.RefreshFocused(a.ctx)
		return a, nil

	case queryChangedMsg:
		a.reload()
		return a, waitForChange(a.changes)

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case tea.KeyMsg:
		if a.session.Modal() != session.ModalNone {
			return a.handleModalKey(msg)
		}
		return a.handleGlobalKey(msg)
	}
	return a, nil
}

func (a *App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var verr *service.ValidationError
		if errors.As(msg.err, &verr) {
			a.status, a.statusErr = "Invalid input: "+verr.Error(), true
			return a, nil // keep the modal open for correction
		}
		a.status, a.statusErr = msg.err.Error(), true
		if a.session.Modal() == session.ModalDeleteConfirm {
			a.session.CloseDeleteConfirm()
		}
		return a, nil
	}

	// success: close whatever dialog initiated the write; the invalidation
	// already queued the refetch that will repaint the lists
	a.session.CloseModal()
	a.acctForm = nil
	a.txForm = nil
	a.status, a.statusErr = msg.action, false
	return a, nil
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "tab":
		if a.focus == paneAccounts {
			a.focus = paneTransactions
		} else {
			a.focus = paneAccounts
		}

	case "up", "k":
		a.moveCursor(-1)

	case "down", "j":
		a.moveCursor(1)

	case "a":
		a.session.OpenAccountModal()
		a.acctForm = newAccountForm(nil)

	case "n":
		a.session.OpenTransactionModal()
		a.txForm = newTransactionForm(nil, a.groups.All())

	case "e":
		a.openEditModal()

	case "d":
		a.openDeleteConfirm()

	case "f":
		if acc, ok := a.selectedAccount(); ok {
			a.setFilter(acc.ID)
			a.status, a.statusErr = "Filtered to "+acc.Name, false
		}

	case "c":
		a.clearFilter()

	case "r":
		a.cache.Invalidate(a.ctx, query.AccountsKey())
		a.cache.Invalidate(a.ctx, query.TransactionsFamily())
	}
	return a, nil
}

func (a *App) clearFilter() {
	old := a.session.FilterAccountID()
	if old == 0 {
		return
	}
	a.cache.Release(query.TransactionsKey(old))
	a.session.ClearFilters()
	a.cache.Observe(query.TransactionsKey(0))
	a.txCursor = 0
	a.reload()
}

func (a *App) moveCursor(delta int) {
	if a.focus == paneAccounts {
		next := a.acctCursor + delta
		for next >= 0 && next < len(a.rows) && a.rows[next].isHeader() {
			next += delta
		}
		if next >= 0 && next < len(a.rows) && !a.rows[next].isHeader() {
			a.acctCursor = next
		}
	} else {
		next := a.txCursor + delta
		if next >= 0 && next < len(a.txns) {
			a.txCursor = next
		}
	}
	a.syncSelection()
}

func (a *App) openEditModal() {
	if a.focus == paneAccounts {
		if acc, ok := a.selectedAccount(); ok {
			a.session.OpenEditAccountModal(acc.ID)
			a.acctForm = newAccountForm(&acc)
		}
	} else {
		if t, ok := a.selectedTransaction(); ok {
			a.session.OpenEditTransactionModal(t.ID)
			a.txForm = newTransactionForm(&t, a.groups.All())
		}
	}
}

func (a *App) openDeleteConfirm() {
	if a.focus == paneAccounts {
		if acc, ok := a.selectedAccount(); ok {
			a.session.OpenDeleteConfirm(session.DeleteAccount, acc.ID)
		}
	} else {
		if t, ok := a.selectedTransaction(); ok {
			a.session.OpenDeleteConfirm(session.DeleteTransaction, t.ID)
		}
	}
}

func (a *App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.session.Modal() {
	case session.ModalAccount:
		return a.handleAccountModalKey(msg)
	case session.ModalTransaction:
		return a.handleTransactionModalKey(msg)
	case session.ModalDeleteConfirm:
		return a.handleDeleteConfirmKey(msg)
	}
	return a, nil
}

func (a *App) handleAccountModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.acctForm == nil {
		a.session.CloseAccountModal()
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.session.CloseAccountModal()
		a.acctForm = nil
		return a, nil
	case "enter":
		name, accType := a.acctForm.values()
		if editID := a.session.EditID(); editID != 0 {
			return a, a.updateAccountCmd(editID, name)
		}
		return a, a.createAccountCmd(name, accType)
	}
	a.acctForm.handleKey(msg)
	return a, nil
}

func (a *App) handleTransactionModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.txForm == nil {
		a.session.CloseTransactionModal()
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.session.CloseTransactionModal()
		a.txForm = nil
		return a, nil
	case "enter":
		in := a.txForm.values()
		if editID := a.session.EditID(); editID != 0 {
			return a, a.updateTransactionCmd(editID, in)
		}
		return a, a.createTransactionCmd(in)
	}
	a.txForm.handleKey(msg)
	return a, nil
}

func (a *App) handleDeleteConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target, id := a.session.DeleteTarget()
	switch msg.String() {
	case "y", "Y":
		if target == session.DeleteAccount {
			return a, a.deleteAccountCmd(id)
		}
		return a, a.deleteTransactionCmd(id)
	case "n", "esc":
		a.session.CloseDeleteConfirm()
	}
	return a, nil
}

func (a *App) createAccountCmd(name string, accType api.AccountType) tea.Cmd {
	return func() tea.Msg {
		_, err := a.mutator.CreateAccount(a.ctx, name, accType)
		return mutationDoneMsg{action: "Account created", err: err}
	}
}

func (a *App) updateAccountCmd(id int64, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.mutator.UpdateAccount(a.ctx, id, name)
		return mutationDoneMsg{action: "Account updated", err: err}
	}
}

func (a *App) deleteAccountCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		err := a.mutator.DeleteAccount(a.ctx, id)
		return mutationDoneMsg{action: "Account deleted", err: err}
	}
}

func (a *App) createTransactionCmd(in api.TransactionInput) tea.Cmd {
	return func() tea.Msg {
		_, err := a.mutator.CreateTransaction(a.ctx, in)
		return mutationDoneMsg{action: "Transaction created", err: err}
	}
}

func (a *App) updateTransactionCmd(id int64, in api.TransactionInput) tea.Cmd {
	return func() tea.Msg {
		_, err := a.mutator.UpdateTransaction(a.ctx, id, in)
		return mutationDoneMsg{action: "Transaction updated", err: err}
	}
}

func (a *App) deleteTransactionCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := a.mutator.DeleteTransaction(a.ctx, id)
		action := "Transaction deleted"
		if err == nil {
			action = fmt.Sprintf("Transaction deleted (balances %.2f / %.2f)",
				res.DebitAccount.Balance, res.CreditAccount.Balance)
		}
		return mutationDoneMsg{action: action, err: err}
	}
}
