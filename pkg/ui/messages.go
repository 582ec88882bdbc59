package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulary-tui/formulary/pkg/render"
)

// renderResultMsg carries a finished preview render back to the UI loop.
// Results whose id no longer matches the latest request are dropped.
type renderResultMsg struct {
	res render.Result
}

// savedMsg reports a successful autosave.
type savedMsg struct {
	name string
	at   time.Time
}

// saveErrorMsg reports a failed autosave; the binding has already dropped
// to Unbound by the time this arrives.
type saveErrorMsg struct {
	name string
	err  error
}

// externalChangeMsg reports that a bound file was modified by another
// process.
type externalChangeMsg struct {
	name string
}

// frameTickMsg drives one coalesced windowed-list render pass.
type frameTickMsg struct{}

// previewDebounceMsg fires after the editor quiet period to request a
// preview render.
type previewDebounceMsg struct {
	generation int
}

// previewsMsg carries a freshly rendered id -> preview mapping for the
// formula list rows.
type previewsMsg struct {
	previews map[string]string
}

// SavedMsg builds the message a binding's OnSaved callback posts to the
// event channel.
func SavedMsg(name string, at time.Time) tea.Msg {
	return savedMsg{name: name, at: at}
}

// SaveErrorMsg builds the message a binding's OnError callback posts.
func SaveErrorMsg(name string, err error) tea.Msg {
	return saveErrorMsg{name: name, err: err}
}

// ExternalChangeMsg builds the message a file watcher posts when a bound
// document changes under us.
func ExternalChangeMsg(name string) tea.Msg {
	return externalChangeMsg{name: name}
}
