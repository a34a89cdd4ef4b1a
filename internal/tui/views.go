package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkeller/ledgerdesk/internal/api"
	"github.com/dkeller/ledgerdesk/internal/query"
	"github.com/dkeller/ledgerdesk/internal/session"
)

const (
	colorText     = lipgloss.Color("#cdd6f4")
	colorSubtext  = lipgloss.Color("#a6adc8")
	colorMuted    = lipgloss.Color("#7f849c")
	colorAccent   = lipgloss.Color("#89b4fa")
	colorGreen    = lipgloss.Color("#a6e3a1")
	colorRed      = lipgloss.Color("#f38ba8")
	colorPeach    = lipgloss.Color("#fab387")
	colorSelected = lipgloss.Color("#313244")
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(colorSubtext).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errStyle      = lipgloss.NewStyle().Foreground(colorRed)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	selectedStyle = lipgloss.NewStyle().Background(colorSelected).Bold(true)
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	sidebarWidth := 34
	if sidebarWidth > a.width/2 {
		sidebarWidth = a.width / 2
	}
	mainWidth := a.width - sidebarWidth - 2

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		a.viewAccounts(sidebarWidth),
		"  ",
		a.viewTransactions(mainWidth),
	)

	sections := []string{
		titleStyle.Render("ledgerdesk"),
		body,
		a.viewStatus(),
		a.viewHelp(),
	}
	base := strings.Join(sections, "\n")

	if modal := a.viewModal(); modal != "" {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return base
}

func (a *App) viewAccounts(width int) string {
	var lines []string
	title := "Accounts"
	if a.focus == paneAccounts {
		title = "▸ " + title
	}
	lines = append(lines, headerStyle.Render(title)+a.freshness(a.groupsRes))

	if a.groupsRes.Status == query.StatusLoading && len(a.rows) == 0 {
		lines = append(lines, mutedStyle.Render("  loading..."))
	}
	if a.groupsRes.Status == query.StatusError && len(a.rows) == 0 {
		lines = append(lines, errStyle.Render("  fetch failed"))
	}

	for i, row := range a.rows {
		if row.isHeader() {
			lines = append(lines, mutedStyle.Render(strings.ToUpper(row.header)))
			continue
		}
		acc := row.account
		name := acc.Name
		if acc.ID == a.session.FilterAccountID() {
			name += " *"
		}
		line := fmt.Sprintf("  %-*s %10.2f", width-14, truncate(name, width-14), acc.Balance)
		if a.focus == paneAccounts && i == a.acctCursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (a *App) viewTransactions(width int) string {
	var lines []string
	title := "Transactions"
	if id := a.session.FilterAccountID(); id != 0 {
		title += " (filtered)"
	}
	if a.focus == paneTransactions {
		title = "▸ " + title
	}
	lines = append(lines, headerStyle.Render(title)+a.freshness(a.txnsRes))

	switch {
	case a.txnsRes.Status == query.StatusLoading && len(a.txns) == 0:
		lines = append(lines, mutedStyle.Render("  loading..."))
	case a.txnsRes.Status == query.StatusError && len(a.txns) == 0:
		lines = append(lines, errStyle.Render("  fetch failed"))
	case len(a.txns) == 0:
		lines = append(lines, mutedStyle.Render("  no transactions"))
	}

	descWidth := width - 48
	if descWidth < 10 {
		descWidth = 10
	}
	for i, t := range a.txns {
		line := fmt.Sprintf("  %s  %-*s %9.2f  %s → %s",
			t.Date, descWidth, truncate(t.Description, descWidth), t.Amount,
			truncate(t.DebitAccount.Name, 12), truncate(t.CreditAccount.Name, 12))
		if a.focus == paneTransactions && i == a.txCursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// freshness annotates a pane title when its query is refetching or its last
// fetch failed but a previous value is still shown.
func (a *App) freshness(res query.Result) string {
	if res.Refreshing {
		return mutedStyle.Render(" ⟳")
	}
	if res.Status == query.StatusError && res.Value != nil {
		return errStyle.Render(" !")
	}
	return ""
}

func (a *App) viewStatus() string {
	if a.status == "" {
		return ""
	}
	if a.statusErr {
		return errStyle.Render(a.status)
	}
	return okStyle.Render(a.status)
}

func (a *App) viewHelp() string {
	return mutedStyle.Render("tab pane  j/k move  a account  n transaction  e edit  d delete  f filter  c clear  r refresh  q quit")
}

func (a *App) viewModal() string {
	switch a.session.Modal() {
	case session.ModalAccount:
		return a.viewAccountModal()
	case session.ModalTransaction:
		return a.viewTransactionModal()
	case session.ModalDeleteConfirm:
		return a.viewDeleteConfirm()
	}
	return ""
}

func (a *App) viewAccountModal() string {
	if a.acctForm == nil {
		return ""
	}
	f := a.acctForm
	title := "New Account"
	if f.editing {
		title = "Edit Account"
	}

	lines := []string{titleStyle.Render(title), ""}
	lines = append(lines, formField("Name", f.name.View(), f.focusIdx == 0))
	lines = append(lines, formField("Type", string(api.AccountTypes[f.typeIdx]), f.focusIdx == 1))
	if f.editing {
		lines = append(lines, mutedStyle.Render("type is fixed after creation"))
	}
	lines = append(lines, "", a.viewStatus(),
		mutedStyle.Render("tab field  left/right type  enter save  esc cancel"))
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) viewTransactionModal() string {
	if a.txForm == nil {
		return ""
	}
	f := a.txForm
	title := "New Transaction"
	if a.session.EditID() != 0 {
		title = "Edit Transaction"
	}

	lines := []string{titleStyle.Render(title), ""}
	lines = append(lines, formField("Description", f.description.View(), f.focusIdx == txFieldDescription))
	lines = append(lines, formField("Date", f.date.View(), f.focusIdx == txFieldDate))
	lines = append(lines, formField("Amount", f.amount.View(), f.focusIdx == txFieldAmount))
	lines = append(lines, formField("Debit", accountLabel(f.accounts, f.debitIdx), f.focusIdx == txFieldDebit))
	lines = append(lines, formField("Credit", accountLabel(f.accounts, f.creditIdx), f.focusIdx == txFieldCredit))
	lines = append(lines, "", a.viewStatus(),
		mutedStyle.Render("tab field  left/right account  enter save  esc cancel"))
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) viewDeleteConfirm() string {
	target, id := a.session.DeleteTarget()
	name := fmt.Sprintf("%s %d", target, id)
	if target == session.DeleteAccount {
		if acc, ok := a.selectedAccount(); ok && acc.ID == id {
			name = "account " + acc.Name
		}
	} else {
		if t, ok := a.selectedTransaction(); ok && t.ID == id {
			name = fmt.Sprintf("transaction %q", t.Description)
		}
	}
	lines := []string{
		titleStyle.Render("Delete " + target.String()),
		"",
		"Delete " + name + "?",
		"",
		a.viewStatus(),
		mutedStyle.Render("y confirm  n/esc cancel"),
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func formField(label, value string, focused bool) string {
	prefix := "  "
	if focused {
		prefix = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("> ")
	}
	return prefix + headerStyle.Render(label+": ") + value
}

func accountLabel(accounts []api.Account, idx int) string {
	if idx < 0 || idx >= len(accounts) {
		return mutedStyle.Render("(no accounts)")
	}
	a := accounts[idx]
	return fmt.Sprintf("%s (%s)", a.Name, a.Type)
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
