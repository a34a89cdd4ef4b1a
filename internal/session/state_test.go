package session

import "testing"

func TestSingleActiveModal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		run  func(s *State)
		want ModalKind
	}{
		{"account over transaction", func(s *State) {
			s.OpenTransactionModal()
			s.OpenAccountModal()
		}, ModalAccount},
		{"transaction over account", func(s *State) {
			s.OpenAccountModal()
			s.OpenTransactionModal()
		}, ModalTransaction},
		{"delete over edit", func(s *State) {
			s.OpenEditAccountModal(7)
			s.OpenDeleteConfirm(DeleteTransaction, 3)
		}, ModalDeleteConfirm},
		{"close all", func(s *State) {
			s.OpenDeleteConfirm(DeleteAccount, 1)
			s.CloseModal()
		}, ModalNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			tc.run(s)
			if got := s.Modal(); got != tc.want {
				t.Fatalf("Modal() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOpenClearsPreviousModalState(t *testing.T) {
	t.Parallel()
	s := New()

	s.OpenEditAccountModal(7)
	if s.EditID() != 7 {
		t.Fatalf("EditID = %d, want 7", s.EditID())
	}

	// opening another modal must not leak the previous edit target
	s.OpenTransactionModal()
	if s.EditID() != 0 {
		t.Fatalf("EditID leaked across modals: %d", s.EditID())
	}

	s.OpenDeleteConfirm(DeleteTransaction, 9)
	target, id := s.DeleteTarget()
	if target != DeleteTransaction || id != 9 {
		t.Fatalf("DeleteTarget = %v/%d, want transaction/9", target, id)
	}

	s.OpenAccountModal()
	if _, id := s.DeleteTarget(); id != 0 {
		t.Fatalf("delete id leaked across modals: %d", id)
	}
}

func TestCloseIsScopedToOwnModal(t *testing.T) {
	t.Parallel()
	s := New()

	s.OpenAccountModal()
	s.CloseTransactionModal()
	s.CloseDeleteConfirm()
	if s.Modal() != ModalAccount {
		t.Fatalf("mismatched close changed modal: %v", s.Modal())
	}

	s.CloseAccountModal()
	if s.Modal() != ModalNone {
		t.Fatalf("Modal() = %v after close, want none", s.Modal())
	}
}

func TestEditIDClearedOnClose(t *testing.T) {
	t.Parallel()
	s := New()

	s.OpenEditTransactionModal(12)
	s.CloseTransactionModal()
	if s.EditID() != 0 {
		t.Fatalf("EditID = %d after close, want 0", s.EditID())
	}

	// reopening on the create path must not resurrect the old target
	s.OpenTransactionModal()
	if s.EditID() != 0 {
		t.Fatalf("EditID = %d on create path, want 0", s.EditID())
	}
}

func TestSelectionAndFilter(t *testing.T) {
	t.Parallel()
	s := New()

	s.SetSelectedAccount(4)
	s.SetSelectedTransaction(11)
	s.SetFilterAccount(4)

	if s.SelectedAccountID() != 4 || s.SelectedTransactionID() != 11 || s.FilterAccountID() != 4 {
		t.Fatalf("selection state = %d/%d/%d", s.SelectedAccountID(), s.SelectedTransactionID(), s.FilterAccountID())
	}

	s.ClearFilters()
	s.ClearFilters() // idempotent
	if s.FilterAccountID() != 0 {
		t.Fatalf("FilterAccountID = %d after clear, want 0", s.FilterAccountID())
	}
	if s.SelectedAccountID() != 4 {
		t.Fatalf("clearing filters must not touch selection")
	}
}
