// Package session holds the ephemeral per-session UI state: selection, the
// active account filter, and which modal (if any) is open. One State is owned
// by the application root and lives for the process; nothing is persisted.
package session

// ModalKind names the modal sub-state. At most one modal is active at a time.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalAccount
	ModalTransaction
	ModalDeleteConfirm
)

func (m ModalKind) String() string {
	switch m {
	case ModalAccount:
		return "account"
	case ModalTransaction:
		return "transaction"
	case ModalDeleteConfirm:
		return "delete-confirm"
	default:
		return "none"
	}
}

// DeleteTarget names what a delete confirmation refers to.
type DeleteTarget int

const (
	DeleteAccount DeleteTarget = iota
	DeleteTransaction
)

func (t DeleteTarget) String() string {
	if t == DeleteTransaction {
		return "transaction"
	}
	return "account"
}

// State is the session state machine. Ids use 0 as "none"; row ids are
// always positive.
type State struct {
	selectedAccountID     int64
	selectedTransactionID int64
	filterAccountID       int64

	modal        ModalKind
	editID       int64 // edit target for account/transaction modals, 0 = create
	deleteTarget DeleteTarget
	deleteID     int64
}

// New returns an all-empty session state.
func New() *State {
	return &State{}
}

// Modal returns the active modal kind.
func (s *State) Modal() ModalKind { return s.modal }

// EditID returns the entity being edited by the active modal, 0 on the
// create path.
func (s *State) EditID() int64 { return s.editID }

// DeleteTarget returns what the delete-confirmation modal points at.
func (s *State) DeleteTarget() (DeleteTarget, int64) { return s.deleteTarget, s.deleteID }

func (s *State) SelectedAccountID() int64     { return s.selectedAccountID }
func (s *State) SelectedTransactionID() int64 { return s.selectedTransactionID }
func (s *State) FilterAccountID() int64       { return s.filterAccountID }

// resetModal clears the whole modal sub-state. Every open transition goes
// through here first so no field of a previous modal survives into the next.
func (s *State) resetModal() {
	s.modal = ModalNone
	s.editID = 0
	s.deleteTarget = DeleteAccount
	s.deleteID = 0
}

// OpenAccountModal opens the account modal on the create path.
func (s *State) OpenAccountModal() {
	s.resetModal()
	s.modal = ModalAccount
}

// OpenEditAccountModal opens the account modal editing id.
func (s *State) OpenEditAccountModal(id int64) {
	s.resetModal()
	s.modal = ModalAccount
	s.editID = id
}

// CloseAccountModal closes the account modal and clears its edit target.
// A no-op when some other modal is active.
func (s *State) CloseAccountModal() {
	if s.modal == ModalAccount {
		s.resetModal()
	}
}

// OpenTransactionModal opens the transaction modal on the create path.
func (s *State) OpenTransactionModal() {
	s.resetModal()
	s.modal = ModalTransaction
}

// OpenEditTransactionModal opens the transaction modal editing id.
func (s *State) OpenEditTransactionModal(id int64) {
	s.resetModal()
	s.modal = ModalTransaction
	s.editID = id
}

// CloseTransactionModal closes the transaction modal and clears its edit target.
func (s *State) CloseTransactionModal() {
	if s.modal == ModalTransaction {
		s.resetModal()
	}
}

// OpenDeleteConfirm opens the delete-confirmation modal for target/id.
func (s *State) OpenDeleteConfirm(target DeleteTarget, id int64) {
	s.resetModal()
	s.modal = ModalDeleteConfirm
	s.deleteTarget = target
	s.deleteID = id
}

// CloseDeleteConfirm dismisses the delete confirmation.
func (s *State) CloseDeleteConfirm() {
	if s.modal == ModalDeleteConfirm {
		s.resetModal()
	}
}

// CloseModal closes whatever modal is open.
func (s *State) CloseModal() {
	s.resetModal()
}

// SetSelectedAccount records the highlighted account, 0 to clear.
func (s *State) SetSelectedAccount(id int64) {
	s.selectedAccountID = id
}

// SetSelectedTransaction records the highlighted transaction, 0 to clear.
func (s *State) SetSelectedTransaction(id int64) {
	s.selectedTransactionID = id
}

// SetFilterAccount sets the account the transaction list is narrowed to,
// 0 to show everything.
func (s *State) SetFilterAccount(id int64) {
	s.filterAccountID = id
}

// ClearFilters drops the account filter. Idempotent.
func (s *State) ClearFilters() {
	s.filterAccountID = 0
}
