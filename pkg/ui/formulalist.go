package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/formulary-tui/formulary/pkg/model"
	"github.com/formulary-tui/formulary/pkg/vlist"
)

// listRow is the render handle for one formula line. Rows are pooled and
// recycled as the window moves.
type listRow struct {
	id   string
	text string
}

// FormulaList is the formula pane. Below the window threshold it renders
// every row directly; at or above it, rows are materialized through the
// windowed engine so render work stays bounded as the collection grows.
// The threshold policy lives here — the engine itself has no opinion.
type FormulaList struct {
	theme     Theme
	threshold int
	buffer    int

	width  int
	height int

	items    []model.Formula
	previews map[string]string // formula id -> rendered approximation
	cursor   int
	scroll   int // first visible row index

	windowed bool
	engine   *vlist.Engine[model.Formula, *listRow]
	pool     *vlist.Pool[*listRow]
}

// NewFormulaList creates the pane with the given windowing threshold and
// buffer row count.
func NewFormulaList(theme Theme, threshold, buffer int) *FormulaList {
	l := &FormulaList{
		theme:     theme,
		threshold: threshold,
		buffer:    buffer,
		previews:  make(map[string]string),
	}
	l.pool = vlist.NewPool(
		func() *listRow { return &listRow{} },
		func(r *listRow) *listRow { r.id, r.text = "", ""; return r },
	)
	return l
}

// SetSize resizes the pane's row viewport.
func (l *FormulaList) SetSize(width, height int) {
	l.width = width
	l.height = height
	if l.windowed && l.engine != nil {
		l.engine.SetViewportExtent(height)
	}
	l.clampCursor()
}

// SetPreviews swaps in the id -> rendered text mapping used for row labels.
func (l *FormulaList) SetPreviews(previews map[string]string) {
	if previews == nil {
		previews = make(map[string]string)
	}
	l.previews = previews
	if l.windowed && l.engine != nil {
		// Force row re-materialization so new previews show up.
		l.engine.UpdateItems(l.items)
	}
}

// SetItems replaces the backing collection and switches rendering mode
// against the threshold: 60 formulas render windowed, dropping back to 10
// returns to plain rendering.
func (l *FormulaList) SetItems(items []model.Formula) {
	l.items = items
	l.clampCursor()

	wantWindowed := len(items) >= l.threshold
	switch {
	case wantWindowed && !l.windowed:
		l.startWindowed()
	case !wantWindowed && l.windowed:
		l.stopWindowed()
	case l.windowed:
		l.engine.UpdateItems(items)
	}
}

// Windowed reports whether the pane currently renders through the engine.
func (l *FormulaList) Windowed() bool {
	return l.windowed
}

// Len returns the item count.
func (l *FormulaList) Len() int {
	return len(l.items)
}

// Cursor returns the selected index.
func (l *FormulaList) Cursor() int {
	return l.cursor
}

// Selected returns the formula under the cursor.
func (l *FormulaList) Selected() (model.Formula, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return model.Formula{}, false
	}
	return l.items[l.cursor], true
}

// MoveCursor moves the selection by delta, scrolling as needed. Scroll
// changes are only recorded here; the next FlushFrame applies them, so a
// burst of key repeats costs one render pass.
func (l *FormulaList) MoveCursor(delta int) {
	l.cursor += delta
	l.clampCursor()

	if l.cursor < l.scroll {
		l.scroll = l.cursor
	}
	if l.cursor >= l.scroll+l.height {
		l.scroll = l.cursor - l.height + 1
	}
	if l.windowed && l.engine != nil {
		l.engine.NotifyScroll(l.scroll)
	}
}

// ScrollToIndex jumps the viewport and cursor to an absolute index.
func (l *FormulaList) ScrollToIndex(i int) {
	l.cursor = i
	l.clampCursor()
	l.scroll = l.cursor
	if l.windowed && l.engine != nil {
		l.engine.ScrollToIndex(l.scroll)
	}
}

// FlushFrame applies any pending windowed scroll. Called once per frame
// tick by the model.
func (l *FormulaList) FlushFrame() {
	if l.windowed && l.engine != nil {
		l.engine.RenderFrame()
	}
}

// Destroy releases the windowed engine, if any.
func (l *FormulaList) Destroy() {
	if l.engine != nil {
		l.engine.Destroy()
		l.engine = nil
	}
	l.windowed = false
}

// View renders the visible rows.
func (l *FormulaList) View(focused bool) string {
	if len(l.items) == 0 {
		return l.theme.Dim.Render("No formulas yet. Press 'a' to add one.")
	}

	var sb strings.Builder
	end := l.scroll + l.height
	if end > len(l.items) {
		end = len(l.items)
	}
	for i := l.scroll; i < end; i++ {
		sb.WriteString(l.renderLine(i, focused))
		if i < end-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (l *FormulaList) renderLine(i int, focused bool) string {
	var text string
	if l.windowed && l.engine != nil {
		if row, ok := l.engine.Handle(l.items[i].ID); ok {
			text = row.text
		} else {
			// Row outside the materialized window (cursor beyond the
			// buffer during a fast scroll); fall back to direct render.
			text = l.rowText(l.items[i], i)
		}
	} else {
		text = l.rowText(l.items[i], i)
	}

	if i == l.cursor && focused {
		return l.theme.Selected.Render(text)
	}
	return l.theme.Normal.Render(text)
}

// rowText formats one formula line: "(index) preview-or-source — note".
func (l *FormulaList) rowText(f model.Formula, _ int) string {
	body := f.LaTeX
	if p, ok := l.previews[f.ID]; ok && p != "" {
		body = p
	}
	line := fmt.Sprintf("(%d) %s", f.Index, body)
	if f.Note != "" {
		line += "  · " + f.Note
	}
	return runewidth.Truncate(line, maxInt(l.width, 4), "…")
}

func (l *FormulaList) startWindowed() {
	cfg := vlist.Config{
		ItemExtent:     1, // one terminal row per formula
		ViewportExtent: maxInt(l.height, 1),
		BufferCount:    l.buffer,
	}
	hooks := vlist.Hooks[model.Formula, *listRow]{
		ID: func(f model.Formula) string { return f.ID },
		Create: func(f model.Formula, i int) *listRow {
			row := l.pool.Get()
			row.id = f.ID
			row.text = l.rowText(f, i)
			return row
		},
		Update: func(row *listRow, f model.Formula, i int) *listRow {
			row.text = l.rowText(f, i)
			return row
		},
		Release: func(row *listRow) {
			l.pool.Put(row)
		},
	}
	engine, err := vlist.New(cfg, hooks)
	if err != nil {
		// Config is static and valid; stay in plain mode if it ever isn't.
		return
	}
	l.engine = engine
	l.engine.Attach(l.items, maxInt(l.height, 1))
	l.engine.Scroll(l.scroll)
	l.windowed = true
}

func (l *FormulaList) stopWindowed() {
	if l.engine != nil {
		l.engine.Destroy()
		l.engine = nil
	}
	l.windowed = false
}

func (l *FormulaList) clampCursor() {
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	maxScroll := len(l.items) - l.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if l.scroll > maxScroll {
		l.scroll = maxScroll
	}
	if l.scroll < 0 {
		l.scroll = 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
