package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// editTarget says what the editor is writing.
type editTarget int

const (
	editNewFormula editTarget = iota
	editExistingFormula
	editNewTemplate
	editNewCategory
	editRenameCategory
)

// editorField is the focused input within the editor.
type editorField int

const (
	fieldLaTeX editorField = iota
	fieldNote
	fieldName
)

// Editor is the modal editing surface: a LaTeX textarea, a note input, and
// (for templates and categories) a name input, plus the live preview line
// produced by the background render worker.
type Editor struct {
	theme Theme

	area textarea.Model
	note textinput.Model
	name textinput.Model

	target     editTarget
	field      editorField
	targetID   string // formula id when editing in place
	categoryID string // owning category for template saves

	preview    string
	previewErr string
	generation int // bumps on each edit; stale debounce ticks are ignored
}

// NewEditor creates an idle editor.
func NewEditor(theme Theme) *Editor {
	area := textarea.New()
	area.Placeholder = "\\frac{a}{b} ..."
	area.ShowLineNumbers = false
	area.SetHeight(4)

	note := textinput.New()
	note.Placeholder = "note (optional)"

	name := textinput.New()
	name.Placeholder = "name"

	return &Editor{theme: theme, area: area, note: note, name: name}
}

// StartFormula opens the editor for a new formula.
func (e *Editor) StartFormula() {
	e.reset(editNewFormula)
	e.area.Focus()
}

// StartEdit opens the editor on an existing formula.
func (e *Editor) StartEdit(id, latex, note string) {
	e.reset(editExistingFormula)
	e.targetID = id
	e.area.SetValue(latex)
	e.note.SetValue(note)
	e.area.Focus()
}

// StartTemplate opens the editor to save a template into categoryID,
// prefilled from the current formula when latex is non-empty.
func (e *Editor) StartTemplate(categoryID, latex string) {
	e.reset(editNewTemplate)
	e.categoryID = categoryID
	e.area.SetValue(latex)
	e.field = fieldName
	e.name.Focus()
}

// StartCategory opens the editor to create a category under parentID.
func (e *Editor) StartCategory(parentID string) {
	e.reset(editNewCategory)
	e.categoryID = parentID
	e.field = fieldName
	e.name.Focus()
}

// StartRename opens the editor to rename an existing category.
func (e *Editor) StartRename(categoryID, currentName string) {
	e.reset(editRenameCategory)
	e.targetID = categoryID
	e.name.SetValue(currentName)
	e.field = fieldName
	e.name.Focus()
}

func (e *Editor) reset(target editTarget) {
	e.target = target
	e.field = fieldLaTeX
	e.targetID = ""
	e.categoryID = ""
	e.area.SetValue("")
	e.note.SetValue("")
	e.name.SetValue("")
	e.area.Blur()
	e.note.Blur()
	e.name.Blur()
	e.preview = ""
	e.previewErr = ""
	e.generation++
}

// Target returns what the editor is editing.
func (e *Editor) Target() editTarget { return e.target }

// TargetID returns the formula id being edited in place.
func (e *Editor) TargetID() string { return e.targetID }

// CategoryID returns the category context for template/category edits.
func (e *Editor) CategoryID() string { return e.categoryID }

// LaTeX returns the trimmed textarea content.
func (e *Editor) LaTeX() string { return strings.TrimSpace(e.area.Value()) }

// Note returns the trimmed note.
func (e *Editor) Note() string { return strings.TrimSpace(e.note.Value()) }

// Name returns the trimmed name.
func (e *Editor) Name() string { return strings.TrimSpace(e.name.Value()) }

// Generation returns the edit generation used to drop stale preview ticks.
func (e *Editor) Generation() int { return e.generation }

// SetPreview records a finished preview render.
func (e *Editor) SetPreview(text, errText string) {
	e.preview = text
	e.previewErr = errText
}

// NeedsName reports whether the current target uses the name field.
func (e *Editor) NeedsName() bool {
	return e.target == editNewTemplate || e.nameOnly()
}

// nameOnly reports whether the target has no latex or note fields.
func (e *Editor) nameOnly() bool {
	return e.target == editNewCategory || e.target == editRenameCategory
}

// CycleField moves focus to the next input.
func (e *Editor) CycleField() {
	e.area.Blur()
	e.note.Blur()
	e.name.Blur()

	switch e.field {
	case fieldLaTeX:
		e.field = fieldNote
		e.note.Focus()
	case fieldNote:
		if e.NeedsName() {
			e.field = fieldName
			e.name.Focus()
		} else {
			e.field = fieldLaTeX
			e.area.Focus()
		}
	case fieldName:
		if e.nameOnly() {
			e.name.Focus()
			return
		}
		e.field = fieldLaTeX
		e.area.Focus()
	}
}

// Update forwards input to the focused field and reports whether the
// LaTeX content changed (the caller schedules a preview render).
func (e *Editor) Update(msg tea.Msg) (tea.Cmd, bool) {
	var cmd tea.Cmd
	before := e.area.Value()
	switch e.field {
	case fieldLaTeX:
		e.area, cmd = e.area.Update(msg)
	case fieldNote:
		e.note, cmd = e.note.Update(msg)
	case fieldName:
		e.name, cmd = e.name.Update(msg)
	}
	changed := e.area.Value() != before
	if changed {
		e.generation++
	}
	return cmd, changed
}

// View renders the editor pane.
func (e *Editor) View() string {
	var sb strings.Builder

	switch e.target {
	case editNewFormula:
		sb.WriteString(e.theme.Header.Render(" New formula ") + "\n\n")
	case editExistingFormula:
		sb.WriteString(e.theme.Header.Render(" Edit formula ") + "\n\n")
	case editNewTemplate:
		sb.WriteString(e.theme.Header.Render(" Save template ") + "\n\n")
	case editNewCategory:
		sb.WriteString(e.theme.Header.Render(" New category ") + "\n\n")
	case editRenameCategory:
		sb.WriteString(e.theme.Header.Render(" Rename category ") + "\n\n")
	}

	if e.NeedsName() {
		sb.WriteString(e.theme.Dim.Render("Name") + "\n")
		sb.WriteString(e.name.View() + "\n\n")
	}
	if !e.nameOnly() {
		sb.WriteString(e.theme.Dim.Render("LaTeX") + "\n")
		sb.WriteString(e.area.View() + "\n\n")
		sb.WriteString(e.theme.Dim.Render("Note") + "\n")
		sb.WriteString(e.note.View() + "\n\n")

		switch {
		case e.previewErr != "":
			sb.WriteString(e.theme.StatusError.Render("preview: " + e.previewErr))
		case e.preview != "":
			sb.WriteString(e.theme.Note.Render("preview: " + e.preview))
		default:
			sb.WriteString(e.theme.Dim.Render("preview: …"))
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("\n" + e.theme.Dim.Render("tab: next field · enter: save · esc: cancel"))
	return sb.String()
}
