package api

import "testing"

func TestAccountTypeNormal(t *testing.T) {
	t.Parallel()

	want := map[AccountType]NormalBalance{
		TypeAsset:     NormalDebit,
		TypeExpense:   NormalDebit,
		TypeLiability: NormalCredit,
		TypeEquity:    NormalCredit,
		TypeIncome:    NormalCredit,
	}
	for typ, normal := range want {
		if got := typ.Normal(); got != normal {
			t.Errorf("%s.Normal() = %s, want %s", typ, got, normal)
		}
	}
}

func TestAccountGroupsAllOrder(t *testing.T) {
	t.Parallel()

	g := AccountGroups{
		Asset:   []Account{{ID: 1}},
		Income:  []Account{{ID: 3}},
		Expense: []Account{{ID: 4}},
		Equity:  []Account{{ID: 2}},
	}
	all := g.All()
	if len(all) != 4 {
		t.Fatalf("All() returned %d accounts, want 4", len(all))
	}
	for i, want := range []int64{1, 2, 3, 4} {
		if all[i].ID != want {
			t.Errorf("All()[%d].ID = %d, want %d", i, all[i].ID, want)
		}
	}
}
