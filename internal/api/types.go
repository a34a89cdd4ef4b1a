package api

// AccountType is the ledger category an account belongs to.
type AccountType string

const (
	TypeAsset     AccountType = "ASSET"
	TypeLiability AccountType = "LIABILITY"
	TypeEquity    AccountType = "EQUITY"
	TypeIncome    AccountType = "INCOME"
	TypeExpense   AccountType = "EXPENSE"
)

// AccountTypes lists all types in presentation order.
var AccountTypes = []AccountType{TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense}

// NormalBalance is the polarity under which an account's balance increases.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Normal returns the normal balance side for an account type.
func (t AccountType) Normal() NormalBalance {
	switch t {
	case TypeAsset, TypeExpense:
		return NormalDebit
	default:
		return NormalCredit
	}
}

// Valid reports whether t is one of the five known types.
func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}
	return false
}

// Account is an account as the ledger service reports it.
type Account struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Type          AccountType   `json:"type"`
	Balance       float64       `json:"balance"`
	NormalBalance NormalBalance `json:"normalBalance"`
	IsActive      bool          `json:"isActive"`
	CreatedAt     string        `json:"createdAt"`
}

// AccountGroups holds active accounts bucketed by type. The service emits
// lower-cased type names as JSON keys, one bucket per known type.
type AccountGroups struct {
	Asset     []Account `json:"asset"`
	Liability []Account `json:"liability"`
	Equity    []Account `json:"equity"`
	Income    []Account `json:"income"`
	Expense   []Account `json:"expense"`
}

// ByType returns the bucket for t.
func (g AccountGroups) ByType(t AccountType) []Account {
	switch t {
	case TypeAsset:
		return g.Asset
	case TypeLiability:
		return g.Liability
	case TypeEquity:
		return g.Equity
	case TypeIncome:
		return g.Income
	case TypeExpense:
		return g.Expense
	}
	return nil
}

// All flattens the groups in presentation order.
func (g AccountGroups) All() []Account {
	var out []Account
	for _, t := range AccountTypes {
		out = append(out, g.ByType(t)...)
	}
	return out
}

// AccountRef is the denormalized account summary embedded in transactions.
type AccountRef struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// Transaction is a transaction as the ledger service reports it. Date is the
// wire format (ISO 8601 date).
type Transaction struct {
	ID              int64      `json:"id"`
	Description     string     `json:"description"`
	Date            string     `json:"date"`
	Amount          float64    `json:"amount"`
	DebitAccountID  int64      `json:"debitAccountId"`
	CreditAccountID int64      `json:"creditAccountId"`
	DebitAccount    AccountRef `json:"debitAccount"`
	CreditAccount   AccountRef `json:"creditAccount"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       string     `json:"createdAt"`
}

// TransactionInput carries the writable fields of a transaction.
type TransactionInput struct {
	Description     string  `json:"description"`
	Date            string  `json:"date"`
	Amount          float64 `json:"amount"`
	DebitAccountID  int64   `json:"debitAccountId"`
	CreditAccountID int64   `json:"creditAccountId"`
}

// BalanceUpdate reports an account's recomputed balance after a delete.
type BalanceUpdate struct {
	ID      int64   `json:"id"`
	Balance float64 `json:"balance"`
}

// DeleteTransactionResult carries the fresh balances of both legs.
type DeleteTransactionResult struct {
	DebitAccount  BalanceUpdate `json:"debitAccount"`
	CreditAccount BalanceUpdate `json:"creditAccount"`
}
