package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulary-tui/formulary/pkg/binding"
	"github.com/formulary-tui/formulary/pkg/config"
	"github.com/formulary-tui/formulary/pkg/export"
	"github.com/formulary-tui/formulary/pkg/model"
	"github.com/formulary-tui/formulary/pkg/render"
	"github.com/formulary-tui/formulary/pkg/store"
	"github.com/formulary-tui/formulary/pkg/testutil"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	tree := store.NewTree()
	tree.ReplaceLibrary(testutil.Library())
	tree.Select(model.AllCategoryID)
	formulas := store.NewFormulas()
	formulas.Replace(testutil.Formulas(3))

	worker := render.NewWorker(render.WorkerConfig{})
	worker.Start()
	t.Cleanup(worker.Stop)

	app := NewApp(Options{
		Config:   config.DefaultConfig(),
		Tree:     tree,
		Formulas: formulas,
		FormulaBinding: binding.New(binding.Config{
			Name:    "formulas",
			Payload: func() ([]byte, error) { return export.FormulasJSON(formulas.All()) },
		}),
		TemplateBinding: binding.New(binding.Config{
			Name:    "templates",
			Payload: func() ([]byte, error) { return export.LibraryJSON(tree.Library()) },
		}),
		Worker: worker,
		Events: make(chan tea.Msg, 4),
	})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return app
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestAppViewShowsBothPanes(t *testing.T) {
	app := newTestApp(t)
	out := app.View()
	if !strings.Contains(out, "All templates") {
		t.Errorf("tree pane missing:\n%s", out)
	}
	if !strings.Contains(out, "E = mc^2") {
		t.Errorf("formula pane missing:\n%s", out)
	}
	if !strings.Contains(out, "unbound") {
		t.Errorf("status line should report unbound documents:\n%s", out)
	}
}

func TestAppFocusCycle(t *testing.T) {
	app := newTestApp(t)
	if app.focus != focusList {
		t.Fatalf("initial focus = %v", app.focus)
	}
	app.Update(key("tab"))
	if app.focus != focusTree {
		t.Errorf("focus after tab = %v, want tree", app.focus)
	}
	app.Update(key("tab"))
	if app.focus != focusList {
		t.Errorf("focus after second tab = %v, want list", app.focus)
	}
}

func TestAppEditorFlow(t *testing.T) {
	app := newTestApp(t)

	app.Update(key("a"))
	if app.focus != focusEditor {
		t.Fatalf("'a' did not open the editor: focus=%v", app.focus)
	}

	for _, r := range `x^2` {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	app.Update(key("enter"))

	if app.focus != focusList {
		t.Errorf("commit did not return to the list: focus=%v", app.focus)
	}
	if app.formulas.Len() != 4 {
		t.Fatalf("commit added nothing: %d formulas", app.formulas.Len())
	}
	added := app.formulas.All()[3]
	if added.LaTeX != `x^2` || added.Index != 4 {
		t.Errorf("added formula = %+v", added)
	}
}

func TestAppEditorEscapeDiscards(t *testing.T) {
	app := newTestApp(t)
	app.Update(key("a"))
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	app.Update(key("esc"))
	if app.formulas.Len() != 3 {
		t.Errorf("escape committed an edit: %d formulas", app.formulas.Len())
	}
	if app.focus != focusList {
		t.Errorf("escape focus = %v", app.focus)
	}
}

func TestAppDeleteNeedsConfirmation(t *testing.T) {
	app := newTestApp(t)

	app.Update(key("d"))
	if app.focus != focusConfirm {
		t.Fatalf("'d' did not prompt: focus=%v", app.focus)
	}
	app.Update(key("n"))
	if app.formulas.Len() != 3 {
		t.Errorf("declined delete removed a formula: %d left", app.formulas.Len())
	}

	app.Update(key("d"))
	app.Update(key("y"))
	if app.formulas.Len() != 2 {
		t.Errorf("confirmed delete left %d formulas", app.formulas.Len())
	}
}

func TestAppSearchInsertsTemplate(t *testing.T) {
	app := newTestApp(t)

	app.Update(key("/"))
	if app.focus != focusSearch {
		t.Fatalf("'/' did not open search: focus=%v", app.focus)
	}
	for _, r := range "euler" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if len(app.searchResults) != 1 {
		t.Fatalf("search results = %d, want 1", len(app.searchResults))
	}
	app.Update(key("enter"))

	if app.formulas.Len() != 4 {
		t.Fatalf("template insert added nothing")
	}
	inserted := app.formulas.All()[3]
	if !strings.Contains(inserted.LaTeX, `\lim`) {
		t.Errorf("inserted formula = %+v", inserted)
	}
}

func TestAppStalePreviewDropped(t *testing.T) {
	app := newTestApp(t)
	app.Update(key("a"))

	app.lastPreviewID = 42
	app.Update(renderResultMsg{res: render.Result{ID: 41, Text: "stale"}})
	if app.editor.preview == "stale" {
		t.Error("stale preview result applied")
	}
	app.Update(renderResultMsg{res: render.Result{ID: 42, Text: "fresh"}})
	if app.editor.preview != "fresh" {
		t.Errorf("matching preview not applied: %q", app.editor.preview)
	}
}

func TestAppExternalChangePrompts(t *testing.T) {
	app := newTestApp(t)
	app.Update(externalChangeMsg{name: "formulas"})
	if app.focus != focusConfirm {
		t.Fatalf("external change did not prompt: focus=%v", app.focus)
	}
	if !strings.Contains(app.confirmPrompt, "formulas") {
		t.Errorf("prompt = %q", app.confirmPrompt)
	}
	// Declining keeps the in-memory state.
	app.Update(key("n"))
	if app.formulas.Len() != 3 {
		t.Errorf("declined reload changed the collection: %d", app.formulas.Len())
	}
}

func TestAppSaveStatus(t *testing.T) {
	app := newTestApp(t)
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	app.Update(savedMsg{name: "formulas", at: at})
	if !strings.Contains(app.status, "12:30:00") {
		t.Errorf("status after save = %q", app.status)
	}
	if app.statusErr {
		t.Error("successful save flagged as error")
	}
}
