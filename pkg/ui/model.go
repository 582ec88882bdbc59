// Package ui implements the terminal interface: a formula pane, a category
// tree pane, a modal editor, and a template search overlay, glued together
// by a single bubbletea model. Background work (autosave, file watching,
// preview rendering) reaches the update loop only as messages.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/formulary-tui/formulary/pkg/binding"
	"github.com/formulary-tui/formulary/pkg/config"
	"github.com/formulary-tui/formulary/pkg/debug"
	"github.com/formulary-tui/formulary/pkg/model"
	"github.com/formulary-tui/formulary/pkg/render"
	"github.com/formulary-tui/formulary/pkg/store"
)

// previewDebounce is the editor quiet period before a preview render is
// requested.
const previewDebounce = 300 * time.Millisecond

// frameInterval paces coalesced windowed-list renders at roughly 30fps.
const frameInterval = 33 * time.Millisecond

// focusArea says which surface owns keyboard input.
type focusArea int

const (
	focusList focusArea = iota
	focusTree
	focusEditor
	focusSearch
	focusHelp
	focusConfirm
)

// Options wires the app to the session's stores, bindings, and worker. The
// Events channel carries messages posted by binding callbacks and watchers;
// the app drains it for its whole lifetime.
type Options struct {
	Config   config.Config
	Tree     *store.Tree
	Formulas *store.Formulas

	FormulaBinding  *binding.Binding
	TemplateBinding *binding.Binding
	Worker          *render.Worker
	Events          chan tea.Msg
}

// App is the top-level bubbletea model.
type App struct {
	theme Theme
	cfg   config.Config

	tree     *store.Tree
	formulas *store.Formulas

	formulaBinding  *binding.Binding
	templateBinding *binding.Binding
	worker          *render.Worker
	events          chan tea.Msg

	list     *FormulaList
	treeView *TreeView
	editor   *Editor

	width  int
	height int
	focus  focusArea

	search        textinput.Model
	searchResults []store.SearchResult
	searchCursor  int

	confirmPrompt string
	confirmAction func() tea.Cmd

	status    string
	statusErr bool

	lastPreviewID uint64
	framePending  bool
}

// NewApp builds the app around already-loaded stores.
func NewApp(opts Options) *App {
	theme := DefaultTheme()

	search := textinput.New()
	search.Placeholder = "search templates"
	search.Prompt = "/ "

	app := &App{
		theme:           theme,
		cfg:             opts.Config,
		tree:            opts.Tree,
		formulas:        opts.Formulas,
		formulaBinding:  opts.FormulaBinding,
		templateBinding: opts.TemplateBinding,
		worker:          opts.Worker,
		events:          opts.Events,
		list:            NewFormulaList(theme, opts.Config.UI.WindowThreshold, opts.Config.UI.BufferRows),
		treeView:        NewTreeView(theme, opts.Tree),
		editor:          NewEditor(theme),
		search:          search,
	}
	app.list.SetItems(opts.Formulas.All())
	app.treeView.Build()
	return app
}

// Init starts the event-channel listener and the initial preview pass.
func (m *App) Init() tea.Cmd {
	return tea.Batch(m.listenEvents(), m.refreshPreviews())
}

// listenEvents pulls one message off the shared event channel. The command
// re-arms itself from Update after every delivery.
func (m *App) listenEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		return <-m.events
	}
}

// Update is the single-threaded state machine; every mutation of the stores
// happens here.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case savedMsg:
		m.setStatus(fmt.Sprintf("%s saved %s", msg.name, msg.at.Format("15:04:05")), false)
		return m, m.listenEvents()

	case saveErrorMsg:
		m.setStatus(fmt.Sprintf("%s autosave failed, document unbound: %v", msg.name, msg.err), true)
		return m, m.listenEvents()

	case externalChangeMsg:
		m.askConfirm(
			fmt.Sprintf("%s changed on disk. Reload and discard in-memory edits? (y/n)", msg.name),
			func() tea.Cmd { return m.reload(msg.name) },
		)
		return m, m.listenEvents()

	case frameTickMsg:
		m.framePending = false
		m.list.FlushFrame()
		return m, nil

	case previewDebounceMsg:
		if msg.generation != m.editor.Generation() {
			return m, nil // superseded by further typing
		}
		return m, m.submitPreview()

	case renderResultMsg:
		if msg.res.ID != m.lastPreviewID {
			debug.Log("ui: dropping stale preview %d", msg.res.ID)
			return m, nil
		}
		if msg.res.Err != nil {
			m.editor.SetPreview("", msg.res.Err.Error())
		} else {
			m.editor.SetPreview(msg.res.Text, "")
		}
		return m, nil

	case previewsMsg:
		m.list.SetPreviews(msg.previews)
		return m, nil
	}
	return m, nil
}

func (m *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusEditor:
		return m.updateEditorKey(msg)
	case focusSearch:
		return m.updateSearchKey(msg)
	case focusConfirm:
		return m.updateConfirmKey(msg)
	case focusHelp:
		switch msg.String() {
		case "q", "esc", "?":
			m.focus = focusList
		}
		return m, nil
	}

	// List and tree panes share the global bindings.
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.focus = focusHelp
		return m, nil
	case "tab":
		if m.focus == focusList {
			m.focus = focusTree
		} else {
			m.focus = focusList
		}
		return m, nil
	case "/":
		m.openSearch()
		return m, textinput.Blink
	case "s":
		return m, m.saveNow()
	}

	if m.focus == focusTree {
		return m.updateTreeKey(msg)
	}
	return m.updateListKey(msg)
}

func (m *App) updateListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.list.MoveCursor(1)
		return m, m.scheduleFrame()
	case "k", "up":
		m.list.MoveCursor(-1)
		return m, m.scheduleFrame()
	case "g", "home":
		m.list.ScrollToIndex(0)
		return m, m.scheduleFrame()
	case "G", "end":
		m.list.ScrollToIndex(m.list.Len() - 1)
		return m, m.scheduleFrame()
	case "ctrl+d", "pgdown":
		m.list.MoveCursor(m.listHeight() / 2)
		return m, m.scheduleFrame()
	case "ctrl+u", "pgup":
		m.list.MoveCursor(-m.listHeight() / 2)
		return m, m.scheduleFrame()

	case "a":
		m.editor.StartFormula()
		m.focus = focusEditor
		return m, textinput.Blink

	case "e":
		if f, ok := m.list.Selected(); ok {
			m.editor.StartEdit(f.ID, f.LaTeX, f.Note)
			m.focus = focusEditor
			return m, textinput.Blink
		}

	case "d":
		if f, ok := m.list.Selected(); ok {
			m.askConfirm(
				fmt.Sprintf("Delete formula (%d)? (y/n)", f.Index),
				func() tea.Cmd {
					if m.formulas.Remove(f.ID) {
						m.formulasChanged()
					}
					return nil
				},
			)
		}

	case "y":
		if f, ok := m.list.Selected(); ok {
			if err := clipboard.WriteAll(f.LaTeX); err != nil {
				m.setStatus("clipboard unavailable: "+err.Error(), true)
			} else {
				m.setStatus(fmt.Sprintf("copied formula (%d)", f.Index), false)
			}
		}

	case "t":
		f, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		target := m.tree.SelectedID()
		if target == model.AllCategoryID {
			m.setStatus("select a category before saving a template", true)
			return m, nil
		}
		m.editor.StartTemplate(target, f.LaTeX)
		m.focus = focusEditor
		return m, textinput.Blink
	}
	return m, nil
}

func (m *App) updateTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.treeView.MoveCursor(1)
	case "k", "up":
		m.treeView.MoveCursor(-1)
	case " ":
		m.treeView.Toggle()
	case "enter":
		m.tree.Select(m.treeView.SelectedID())
		m.templatesChanged()

	case "n":
		m.editor.StartCategory(m.treeView.SelectedID())
		m.focus = focusEditor
		return m, textinput.Blink

	case "r":
		row, ok := m.treeView.CursorRow()
		if !ok || row.id == model.AllCategoryID {
			return m, nil
		}
		m.editor.StartRename(row.id, row.label)
		m.focus = focusEditor
		return m, textinput.Blink

	case "d":
		row, ok := m.treeView.CursorRow()
		if !ok || row.id == model.AllCategoryID {
			return m, nil
		}
		n := m.tree.TemplateCount(row.id)
		m.askConfirm(
			fmt.Sprintf("Delete %q and its subtree (%d templates)? (y/n)", row.label, n),
			func() tea.Cmd {
				if err := m.tree.DeleteCategory(row.id); err != nil {
					m.setStatus(err.Error(), true)
					return nil
				}
				m.templatesChanged()
				return nil
			},
		)

	case "<":
		// Promote: reparent under the grandparent.
		row, ok := m.treeView.CursorRow()
		if !ok || row.id == model.AllCategoryID {
			return m, nil
		}
		cat, _ := m.tree.Category(row.id)
		grand := ""
		if parent, found := m.tree.Category(cat.ParentID); found {
			grand = parent.ParentID
		}
		if err := m.tree.MoveCategory(row.id, grand); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.templatesChanged()
		m.treeView.CursorTo(row.id)

	case ">":
		// Demote: nest under the row above the cursor.
		row, ok := m.treeView.CursorRow()
		if !ok || row.id == model.AllCategoryID {
			return m, nil
		}
		m.treeView.MoveCursor(-1)
		above, _ := m.treeView.CursorRow()
		m.treeView.CursorTo(row.id)
		if above.id == row.id || above.id == model.AllCategoryID {
			return m, nil
		}
		if err := m.tree.MoveCategory(row.id, above.id); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.templatesChanged()
		m.treeView.CursorTo(row.id)
	}
	return m, nil
}

func (m *App) updateEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = m.editorReturnFocus()
		return m, nil
	case "tab":
		m.editor.CycleField()
		return m, nil
	case "enter":
		// The textarea wants enter for newlines; formulas here are single
		// expressions, so enter always commits.
		return m, m.commitEditor()
	}

	cmd, changed := m.editor.Update(msg)
	if changed {
		gen := m.editor.Generation()
		return m, tea.Batch(cmd, tea.Tick(previewDebounce, func(time.Time) tea.Msg {
			return previewDebounceMsg{generation: gen}
		}))
	}
	return m, cmd
}

// commitEditor applies the editor's content to the stores.
func (m *App) commitEditor() tea.Cmd {
	switch m.editor.Target() {
	case editNewFormula:
		if _, err := m.formulas.Add(m.editor.LaTeX(), m.editor.Note()); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.formulasChanged()
		m.list.ScrollToIndex(m.list.Len() - 1)

	case editExistingFormula:
		if err := m.formulas.Update(m.editor.TargetID(), m.editor.LaTeX(), m.editor.Note()); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.formulasChanged()

	case editNewTemplate:
		catID := m.editor.CategoryID()
		name, latex, note := m.editor.Name(), m.editor.LaTeX(), m.editor.Note()
		_, err := m.tree.SaveTemplate(catID, name, latex, note, false)
		if errors.Is(err, store.ErrDuplicateName) {
			m.askConfirm(
				fmt.Sprintf("Template %q exists. Overwrite? (y/n)", name),
				func() tea.Cmd {
					if _, err := m.tree.SaveTemplate(catID, name, latex, note, true); err != nil {
						m.setStatus(err.Error(), true)
						return nil
					}
					m.templatesChanged()
					m.setStatus(fmt.Sprintf("template %q overwritten", name), false)
					return nil
				},
			)
			return nil
		}
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.templatesChanged()
		m.setStatus(fmt.Sprintf("template %q saved", name), false)

	case editNewCategory:
		cat, err := m.tree.CreateCategory(m.editor.Name(), m.editor.CategoryID())
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.templatesChanged()
		m.treeView.CursorTo(cat.ID)

	case editRenameCategory:
		if err := m.tree.RenameCategory(m.editor.TargetID(), m.editor.Name()); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.templatesChanged()
	}

	m.focus = m.editorReturnFocus()
	return tea.Batch(m.scheduleFrame(), m.refreshPreviews())
}

// editorReturnFocus picks the pane to return to when the editor closes.
func (m *App) editorReturnFocus() focusArea {
	if m.editor.nameOnly() {
		return focusTree
	}
	return focusList
}

func (m *App) updateSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusList
		return m, nil
	case "down", "ctrl+n":
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil
	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil
	case "enter":
		if m.searchCursor < len(m.searchResults) {
			r := m.searchResults[m.searchCursor]
			if _, err := m.formulas.Add(r.Template.LaTeX, r.Template.Note); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.formulasChanged()
			m.setStatus(fmt.Sprintf("inserted template %q", r.Template.Name), false)
			m.focus = focusList
			m.list.ScrollToIndex(m.list.Len() - 1)
		}
		return m, tea.Batch(m.scheduleFrame(), m.refreshPreviews())
	case "ctrl+x":
		if m.searchCursor < len(m.searchResults) {
			r := m.searchResults[m.searchCursor]
			if err := m.tree.RemoveTemplate(r.CategoryID, r.Template.ID); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.templatesChanged()
			m.runSearch()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.runSearch()
	return m, cmd
}

func (m *App) updateConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		action := m.confirmAction
		m.clearConfirm()
		if action != nil {
			return m, action()
		}
	case "n", "N", "esc", "q":
		m.clearConfirm()
	}
	return m, nil
}

func (m *App) openSearch() {
	m.search.SetValue("")
	m.search.Focus()
	m.searchCursor = 0
	m.focus = focusSearch
	m.runSearch()
}

func (m *App) runSearch() {
	m.searchResults = m.tree.SearchTemplates(m.search.Value(), m.tree.SelectedID())
	if m.searchCursor >= len(m.searchResults) {
		m.searchCursor = len(m.searchResults) - 1
	}
	if m.searchCursor < 0 {
		m.searchCursor = 0
	}
}

func (m *App) askConfirm(prompt string, action func() tea.Cmd) {
	m.confirmPrompt = prompt
	m.confirmAction = action
	m.focus = focusConfirm
}

func (m *App) clearConfirm() {
	m.confirmPrompt = ""
	m.confirmAction = nil
	m.focus = focusList
}

// formulasChanged refreshes the list and schedules an autosave plus a
// preview pass.
func (m *App) formulasChanged() {
	m.list.SetItems(m.formulas.All())
	m.formulaBinding.MarkDirty()
}

// templatesChanged rebuilds the tree pane and schedules a template autosave.
func (m *App) templatesChanged() {
	m.treeView.Build()
	m.list.SetItems(m.formulas.All())
	m.templateBinding.MarkDirty()
}

// saveNow forces an immediate write of both documents.
func (m *App) saveNow() tea.Cmd {
	var problems []string
	if err := m.formulaBinding.SaveNow(); err != nil && !errors.Is(err, binding.ErrUnbound) {
		problems = append(problems, "formulas: "+err.Error())
	}
	if err := m.templateBinding.SaveNow(); err != nil && !errors.Is(err, binding.ErrUnbound) {
		problems = append(problems, "templates: "+err.Error())
	}
	if len(problems) > 0 {
		m.setStatus(strings.Join(problems, "; "), true)
	} else {
		m.setStatus("saved", false)
	}
	return nil
}

// reload re-reads a document after an external change.
func (m *App) reload(name string) tea.Cmd {
	switch name {
	case "formulas":
		data, err := m.formulaBinding.Load()
		if err != nil {
			m.setStatus("reload failed: "+err.Error(), true)
			return nil
		}
		entries, err := store.NormalizeFormulas(data)
		if err != nil {
			m.setStatus("reload failed: "+err.Error(), true)
			return nil
		}
		m.formulas.Replace(entries)
		m.list.SetItems(m.formulas.All())
		m.setStatus("formulas reloaded", false)
		return m.refreshPreviews()

	case "templates":
		data, err := m.templateBinding.Load()
		if err != nil {
			m.setStatus("reload failed: "+err.Error(), true)
			return nil
		}
		lib, err := store.NormalizeTree(data)
		if err != nil {
			m.setStatus("reload failed: "+err.Error(), true)
			return nil
		}
		m.tree.ReplaceLibrary(lib)
		m.treeView.Build()
		m.setStatus("templates reloaded", false)
	}
	return nil
}

// submitPreview sends the editor's current latex to the worker and waits
// for the matching result off the update loop.
func (m *App) submitPreview() tea.Cmd {
	latex := m.editor.LaTeX()
	if latex == "" {
		m.editor.SetPreview("", "")
		return nil
	}
	id, ch := m.worker.Submit(latex)
	m.lastPreviewID = id
	return func() tea.Msg {
		return renderResultMsg{res: <-ch}
	}
}

// refreshPreviews renders the whole collection in the background and swaps
// the result in as one message. Individual failures leave that row showing
// its raw source.
func (m *App) refreshPreviews() tea.Cmd {
	snapshot := append([]model.Formula(nil), m.formulas.All()...)
	if len(snapshot) == 0 {
		return nil
	}
	worker := m.worker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		inputs := make([]string, len(snapshot))
		for i, f := range snapshot {
			inputs[i] = f.LaTeX
		}
		out, _ := worker.RenderAll(ctx, inputs)
		previews := make(map[string]string, len(snapshot))
		for i, f := range snapshot {
			if i < len(out) && out[i] != "" {
				previews[f.ID] = out[i]
			}
		}
		return previewsMsg{previews: previews}
	}
}

// scheduleFrame arms one coalesced render tick. Repeated scrolls before the
// tick fires share it.
func (m *App) scheduleFrame() tea.Cmd {
	if m.framePending {
		return nil
	}
	m.framePending = true
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameTickMsg{}
	})
}

func (m *App) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// layout resizes the panes from the window size.
func (m *App) layout() {
	treeWidth := m.width / 3
	if treeWidth > 40 {
		treeWidth = 40
	}
	listWidth := m.width - treeWidth - 6 // borders and padding
	h := m.listHeight()
	m.treeView.SetSize(maxInt(treeWidth-2, 10), h)
	m.list.SetSize(maxInt(listWidth, 20), h)
}

// listHeight is the row count available to the panes.
func (m *App) listHeight() int {
	h := m.height - 5 // header, borders, status line
	return maxInt(h, 3)
}

// View renders the whole screen.
func (m *App) View() string {
	if m.width == 0 {
		return "loading..."
	}

	switch m.focus {
	case focusHelp:
		return RenderHelp(m.width)
	case focusEditor:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.header(),
			m.theme.PaneFocused.Width(m.width-2).Render(m.editor.View()),
			m.statusLine(),
		)
	}

	treeWidth := m.width / 3
	if treeWidth > 40 {
		treeWidth = 40
	}

	treeStyle := m.theme.Pane
	listStyle := m.theme.Pane
	if m.focus == focusTree {
		treeStyle = m.theme.PaneFocused
	} else {
		listStyle = m.theme.PaneFocused
	}

	treePane := treeStyle.Width(treeWidth).Height(m.listHeight()).
		Render(m.treeView.View(m.focus == focusTree))
	listPane := listStyle.Width(m.width - treeWidth - 4).Height(m.listHeight()).
		Render(m.list.View(m.focus == focusList))

	body := lipgloss.JoinHorizontal(lipgloss.Top, treePane, listPane)

	rows := []string{m.header(), body}
	if m.focus == focusSearch {
		rows = append(rows, m.searchOverlay())
	}
	if m.focus == focusConfirm {
		rows = append(rows, m.theme.StatusError.Render(m.confirmPrompt))
	}
	rows = append(rows, m.statusLine())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *App) header() string {
	if m.cfg.UI.Headless {
		return ""
	}
	title := m.theme.Header.Render(" formulary ")
	scope := "all"
	if cat, ok := m.tree.Category(m.tree.SelectedID()); ok {
		scope = cat.Name
	}
	info := m.theme.Dim.Render(fmt.Sprintf("  scope: %s · %d formulas", scope, m.formulas.Len()))
	return title + info
}

func (m *App) searchOverlay() string {
	var sb strings.Builder
	sb.WriteString(m.theme.SearchPrompt.Render(m.search.View()))
	sb.WriteByte('\n')
	if len(m.searchResults) == 0 {
		sb.WriteString(m.theme.Dim.Render("no templates match"))
		return sb.String()
	}

	shown := len(m.searchResults)
	if shown > 8 {
		shown = 8
	}
	start := 0
	if m.searchCursor >= shown {
		start = m.searchCursor - shown + 1
	}
	for i := start; i < start+shown && i < len(m.searchResults); i++ {
		r := m.searchResults[i]
		line := fmt.Sprintf("%s › %s  %s", r.CategoryName, r.Template.Name, m.theme.Dim.Render(r.Template.LaTeX))
		if i == m.searchCursor {
			line = m.theme.Selected.Render(fmt.Sprintf("%s › %s  %s", r.CategoryName, r.Template.Name, r.Template.LaTeX))
		}
		sb.WriteString(line)
		if i < start+shown-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (m *App) statusLine() string {
	left := m.bindingStatus("formulas", m.formulaBinding) + "  " +
		m.bindingStatus("templates", m.templateBinding)
	if m.list.Windowed() {
		left += "  " + m.theme.Dim.Render("[windowed]")
	}
	if m.status == "" {
		return left
	}
	style := m.theme.StatusOK
	if m.statusErr {
		style = m.theme.StatusError
	}
	return left + "  " + style.Render(m.status)
}

func (m *App) bindingStatus(name string, b *binding.Binding) string {
	if b.State() != binding.Bound {
		return m.theme.StatusError.Render(name + ":unbound")
	}
	return m.theme.StatusOK.Render(name + ":" + string(b.Storage().Kind()))
}
