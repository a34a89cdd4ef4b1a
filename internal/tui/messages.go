package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dkeller/ledgerdesk/internal/query"
)

// queryChangedMsg arrives whenever a cache entry transitions; the view
// re-reads its queries on receipt.
type queryChangedMsg struct {
	key query.Key
}

// mutationDoneMsg reports the outcome of a write issued from a modal.
type mutationDoneMsg struct {
	action string
	err    error
}

// waitForChange blocks on the cache-change channel and re-arms itself after
// every receipt.
func waitForChange(ch <-chan query.Key) tea.Cmd {
	return func() tea.Msg {
		k, ok := <-ch
		if !ok {
			return nil
		}
		return queryChangedMsg{key: k}
	}
}
