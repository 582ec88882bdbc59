package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/formulary-tui/formulary/pkg/model"
	"github.com/formulary-tui/formulary/pkg/store"
)

// treeRow is one flattened, visible line of the category tree.
type treeRow struct {
	id    string
	label string
	depth int
	count int
}

// TreeView is the category pane: the "all" scope followed by the category
// forest, flattened in display order with expand/collapse state. Counts
// are subtree template counts from the store's descendant cache.
type TreeView struct {
	theme Theme
	tree  *store.Tree

	expanded map[string]bool
	rows     []treeRow
	cursor   int
	scroll   int
	width    int
	height   int
}

// NewTreeView creates the pane over a tree store. Roots start expanded.
func NewTreeView(theme Theme, tree *store.Tree) *TreeView {
	return &TreeView{
		theme:    theme,
		tree:     tree,
		expanded: make(map[string]bool),
	}
}

// SetSize resizes the pane.
func (v *TreeView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clamp()
}

// Build reflattens the forest into visible rows. Call after any tree
// mutation.
func (v *TreeView) Build() {
	cats := v.tree.Categories()
	children := make(map[string][]model.Category)
	var roots []model.Category
	for _, c := range cats {
		if c.ParentID == "" {
			roots = append(roots, c)
		} else {
			children[c.ParentID] = append(children[c.ParentID], c)
		}
	}

	rows := []treeRow{{
		id:    model.AllCategoryID,
		label: "All templates",
		depth: 0,
		count: v.tree.TemplateCount(model.AllCategoryID),
	}}

	seen := make(map[string]bool)
	var walk func(c model.Category, depth int)
	walk = func(c model.Category, depth int) {
		if seen[c.ID] {
			return
		}
		seen[c.ID] = true
		rows = append(rows, treeRow{
			id:    c.ID,
			label: c.Name,
			depth: depth,
			count: v.tree.TemplateCount(c.ID),
		})
		if v.isExpanded(c.ID, depth) {
			for _, child := range children[c.ID] {
				walk(child, depth+1)
			}
		}
	}
	for _, r := range roots {
		walk(r, 1)
	}

	v.rows = rows
	v.clamp()
}

// isExpanded reports effective expansion: explicit user choice wins, then
// depth-1 nodes default open.
func (v *TreeView) isExpanded(id string, depth int) bool {
	if explicit, ok := v.expanded[id]; ok {
		return explicit
	}
	return depth <= 1
}

// Toggle flips expansion under the cursor.
func (v *TreeView) Toggle() {
	row, ok := v.CursorRow()
	if !ok || row.id == model.AllCategoryID {
		return
	}
	v.expanded[row.id] = !v.isExpanded(row.id, row.depth)
	v.Build()
}

// CursorRow returns the row under the cursor.
func (v *TreeView) CursorRow() (treeRow, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return treeRow{}, false
	}
	return v.rows[v.cursor], true
}

// SelectedID returns the category id under the cursor ("all" included).
func (v *TreeView) SelectedID() string {
	row, ok := v.CursorRow()
	if !ok {
		return model.AllCategoryID
	}
	return row.id
}

// MoveCursor moves the selection by delta.
func (v *TreeView) MoveCursor(delta int) {
	v.cursor += delta
	v.clamp()
	if v.cursor < v.scroll {
		v.scroll = v.cursor
	}
	if v.cursor >= v.scroll+v.height {
		v.scroll = v.cursor - v.height + 1
	}
}

// CursorTo moves the cursor to the row holding id, if visible.
func (v *TreeView) CursorTo(id string) {
	for i, row := range v.rows {
		if row.id == id {
			v.cursor = i
			v.clamp()
			return
		}
	}
}

// View renders the visible rows.
func (v *TreeView) View(focused bool) string {
	if len(v.rows) == 0 {
		return v.theme.Dim.Render("No categories.")
	}

	var sb strings.Builder
	end := v.scroll + v.height
	if end > len(v.rows) {
		end = len(v.rows)
	}
	for i := v.scroll; i < end; i++ {
		row := v.rows[i]
		indent := strings.Repeat("  ", row.depth)
		marker := "  "
		if row.id != model.AllCategoryID && v.hasChildren(row.id) {
			if v.isExpanded(row.id, row.depth) {
				marker = "▾ "
			} else {
				marker = "▸ "
			}
		}
		line := fmt.Sprintf("%s%s%s (%d)", indent, marker, row.label, row.count)
		line = runewidth.Truncate(line, maxInt(v.width, 4), "…")

		switch {
		case i == v.cursor && focused:
			sb.WriteString(v.theme.Selected.Render(line))
		case row.id == v.tree.SelectedID():
			sb.WriteString(v.theme.SearchPrompt.Render(line))
		default:
			sb.WriteString(v.theme.Normal.Render(line))
		}
		if i < end-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (v *TreeView) hasChildren(id string) bool {
	for _, c := range v.tree.Categories() {
		if c.ParentID == id {
			return true
		}
	}
	return false
}

func (v *TreeView) clamp() {
	if v.cursor >= len(v.rows) {
		v.cursor = len(v.rows) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.scroll > v.cursor {
		v.scroll = v.cursor
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
}
