package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dkeller/ledgerdesk/internal/api"
)

// accountForm is the account modal: a name field plus a type picker. The
// type is fixed when editing (only the name is writable after creation).
type accountForm struct {
	name     textinput.Model
	typeIdx  int
	editing  bool
	focusIdx int // 0 = name, 1 = type
}

func newAccountForm(a *api.Account) *accountForm {
	name := textinput.New()
	name.Placeholder = "Account name"
	name.CharLimit = 80
	name.Focus()

	f := &accountForm{name: name}
	if a != nil {
		f.editing = true
		f.name.SetValue(a.Name)
		for i, t := range api.AccountTypes {
			if t == a.Type {
				f.typeIdx = i
				break
			}
		}
	}
	return f
}

func (f *accountForm) values() (string, api.AccountType) {
	return strings.TrimSpace(f.name.Value()), api.AccountTypes[f.typeIdx]
}

func (f *accountForm) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focusIdx + 1)
		return
	case "shift+tab", "up":
		f.setFocus(f.focusIdx - 1)
		return
	case "left":
		if f.focusIdx == 1 && !f.editing && f.typeIdx > 0 {
			f.typeIdx--
		}
		if f.focusIdx == 1 {
			return
		}
	case "right":
		if f.focusIdx == 1 && !f.editing && f.typeIdx < len(api.AccountTypes)-1 {
			f.typeIdx++
		}
		if f.focusIdx == 1 {
			return
		}
	}
	if f.focusIdx == 0 {
		f.name, _ = f.name.Update(msg)
	}
}

func (f *accountForm) setFocus(idx int) {
	if idx < 0 {
		idx = 1
	}
	if idx > 1 {
		idx = 0
	}
	f.focusIdx = idx
	if idx == 0 {
		f.name.Focus()
	} else {
		f.name.Blur()
	}
}

const (
	txFieldDescription = iota
	txFieldDate
	txFieldAmount
	txFieldDebit
	txFieldCredit
	txFieldCount
)

// transactionForm is the transaction modal: three text fields and two
// account pickers cycled with left/right.
type transactionForm struct {
	description textinput.Model
	date        textinput.Model
	amount      textinput.Model

	accounts  []api.Account
	debitIdx  int
	creditIdx int

	focusIdx int
}

func newTransactionForm(t *api.Transaction, accounts []api.Account) *transactionForm {
	desc := textinput.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 200
	desc.Focus()

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10
	date.SetValue(time.Now().Format("2006-01-02"))

	amount := textinput.New()
	amount.Placeholder = "0.00"
	amount.CharLimit = 15

	f := &transactionForm{
		description: desc,
		date:        date,
		amount:      amount,
		accounts:    accounts,
		creditIdx:   min(1, len(accounts)-1),
	}
	if t != nil {
		f.description.SetValue(t.Description)
		f.date.SetValue(t.Date)
		f.amount.SetValue(fmt.Sprintf("%.2f", t.Amount))
		for i, a := range accounts {
			if a.ID == t.DebitAccountID {
				f.debitIdx = i
			}
			if a.ID == t.CreditAccountID {
				f.creditIdx = i
			}
		}
	}
	return f
}

func (f *transactionForm) values() api.TransactionInput {
	amount, _ := strconv.ParseFloat(strings.TrimSpace(f.amount.Value()), 64)
	in := api.TransactionInput{
		Description: strings.TrimSpace(f.description.Value()),
		Date:        strings.TrimSpace(f.date.Value()),
		Amount:      amount,
	}
	if f.debitIdx >= 0 && f.debitIdx < len(f.accounts) {
		in.DebitAccountID = f.accounts[f.debitIdx].ID
	}
	if f.creditIdx >= 0 && f.creditIdx < len(f.accounts) {
		in.CreditAccountID = f.accounts[f.creditIdx].ID
	}
	return in
}

func (f *transactionForm) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focusIdx + 1)
		return
	case "shift+tab", "up":
		f.setFocus(f.focusIdx - 1)
		return
	case "left":
		if idx := f.pickerAt(f.focusIdx); idx != nil {
			if *idx > 0 {
				*idx--
			}
			return
		}
	case "right":
		if idx := f.pickerAt(f.focusIdx); idx != nil {
			if *idx < len(f.accounts)-1 {
				*idx++
			}
			return
		}
	}

	switch f.focusIdx {
	case txFieldDescription:
		f.description, _ = f.description.Update(msg)
	case txFieldDate:
		f.date, _ = f.date.Update(msg)
	case txFieldAmount:
		f.amount, _ = f.amount.Update(msg)
	}
}

// pickerAt returns the picker index for field, nil for text fields.
func (f *transactionForm) pickerAt(field int) *int {
	switch field {
	case txFieldDebit:
		return &f.debitIdx
	case txFieldCredit:
		return &f.creditIdx
	}
	return nil
}

func (f *transactionForm) setFocus(idx int) {
	if idx < 0 {
		idx = txFieldCount - 1
	}
	if idx >= txFieldCount {
		idx = 0
	}
	f.focusIdx = idx

	f.description.Blur()
	f.date.Blur()
	f.amount.Blur()
	switch idx {
	case txFieldDescription:
		f.description.Focus()
	case txFieldDate:
		f.date.Focus()
	case txFieldAmount:
		f.amount.Focus()
	}
}
