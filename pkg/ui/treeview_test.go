package ui

import (
	"strings"
	"testing"

	"github.com/formulary-tui/formulary/pkg/model"
	"github.com/formulary-tui/formulary/pkg/store"
	"github.com/formulary-tui/formulary/pkg/testutil"
)

func newTestTree(t *testing.T) (*store.Tree, *TreeView) {
	t.Helper()
	tree := store.NewTree()
	tree.ReplaceLibrary(testutil.Library())
	v := NewTreeView(DefaultTheme(), tree)
	v.SetSize(40, 20)
	v.Build()
	return tree, v
}

func TestTreeViewRows(t *testing.T) {
	_, v := newTestTree(t)

	// "all" scope + two roots + the expanded child of Calculus.
	if len(v.rows) != 4 {
		t.Fatalf("got %d rows: %+v", len(v.rows), v.rows)
	}
	if v.rows[0].id != model.AllCategoryID || v.rows[0].count != 3 {
		t.Errorf("all row = %+v", v.rows[0])
	}

	byID := make(map[string]treeRow)
	for _, r := range v.rows {
		byID[r.id] = r
	}
	if byID["cat-calculus"].count != 2 {
		t.Errorf("subtree count for calculus = %d, want 2", byID["cat-calculus"].count)
	}
	if byID["cat-limits"].depth != 2 {
		t.Errorf("limits depth = %d, want 2", byID["cat-limits"].depth)
	}
}

func TestTreeViewToggleCollapses(t *testing.T) {
	_, v := newTestTree(t)

	v.CursorTo("cat-calculus")
	v.Toggle()
	if len(v.rows) != 3 {
		t.Fatalf("collapse left %d rows, want 3", len(v.rows))
	}
	for _, r := range v.rows {
		if r.id == "cat-limits" {
			t.Error("collapsed subtree still visible")
		}
	}

	v.Toggle()
	if len(v.rows) != 4 {
		t.Errorf("re-expand left %d rows, want 4", len(v.rows))
	}
}

func TestTreeViewSelectedID(t *testing.T) {
	_, v := newTestTree(t)
	if got := v.SelectedID(); got != model.AllCategoryID {
		t.Errorf("initial selection = %q, want %q", got, model.AllCategoryID)
	}
	v.MoveCursor(1)
	if got := v.SelectedID(); got != "cat-algebra" {
		t.Errorf("after move = %q, want cat-algebra", got)
	}
}

func TestTreeViewRebuildAfterMutation(t *testing.T) {
	tree, v := newTestTree(t)

	cat, err := tree.CreateCategory("Geometry", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	v.Build()
	found := false
	for _, r := range v.rows {
		if r.id == cat.ID {
			found = true
		}
	}
	if !found {
		t.Error("new category missing after rebuild")
	}

	if err := tree.DeleteCategory("cat-calculus"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	v.Build()
	for _, r := range v.rows {
		if r.id == "cat-calculus" || r.id == "cat-limits" {
			t.Errorf("deleted subtree row survived: %s", r.id)
		}
	}
	if v.rows[0].count != 1 {
		t.Errorf("all count after cascade delete = %d, want 1", v.rows[0].count)
	}
}

func TestTreeViewRenderMarkers(t *testing.T) {
	_, v := newTestTree(t)
	out := v.View(true)

	if !strings.Contains(out, "All templates (3)") {
		t.Errorf("view missing all scope:\n%s", out)
	}
	if !strings.Contains(out, "▾ Calculus (2)") {
		t.Errorf("expanded parent marker missing:\n%s", out)
	}

	v.CursorTo("cat-calculus")
	v.Toggle()
	out = v.View(true)
	if !strings.Contains(out, "▸ Calculus (2)") {
		t.Errorf("collapsed parent marker missing:\n%s", out)
	}
}
