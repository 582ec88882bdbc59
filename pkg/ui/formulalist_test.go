package ui

import (
	"strings"
	"testing"

	"github.com/formulary-tui/formulary/pkg/testutil"
)

func newTestList(threshold int) *FormulaList {
	l := NewFormulaList(DefaultTheme(), threshold, 2)
	l.SetSize(80, 10)
	return l
}

func TestListSwitchesToWindowedAtThreshold(t *testing.T) {
	l := newTestList(50)

	l.SetItems(testutil.Formulas(49))
	if l.Windowed() {
		t.Error("49 items rendered windowed below a threshold of 50")
	}
	l.SetItems(testutil.Formulas(60))
	if !l.Windowed() {
		t.Error("60 items did not switch to windowed rendering")
	}

	// Dropping well below the threshold switches back and releases the
	// engine's handles.
	l.SetItems(testutil.Formulas(10))
	if l.Windowed() {
		t.Error("10 items stayed windowed")
	}
}

func TestWindowedMaterializationIsBounded(t *testing.T) {
	l := newTestList(50)
	l.SetItems(testutil.Formulas(500))
	if !l.Windowed() {
		t.Fatal("expected windowed mode")
	}

	// viewport 10 rows + 2 buffer rows either side
	if got := l.engine.MaterializedCount(); got > 14 {
		t.Errorf("materialized %d rows for a 10-row viewport", got)
	}

	l.ScrollToIndex(400)
	l.FlushFrame()
	if got := l.engine.MaterializedCount(); got > 14 {
		t.Errorf("materialized %d rows after a jump", got)
	}
	start, end := l.engine.VisibleRange()
	if start > 400 || end <= 400 {
		t.Errorf("window [%d,%d) does not cover the jump target", start, end)
	}
}

func TestCursorTracksSelection(t *testing.T) {
	l := newTestList(50)
	l.SetItems(testutil.Formulas(5))

	l.MoveCursor(3)
	if f, ok := l.Selected(); !ok || f.Index != 4 {
		t.Errorf("selection after move = %+v", f)
	}
	l.MoveCursor(100)
	if l.Cursor() != 4 {
		t.Errorf("cursor overran the list: %d", l.Cursor())
	}
	l.MoveCursor(-100)
	if l.Cursor() != 0 {
		t.Errorf("cursor underran the list: %d", l.Cursor())
	}
}

func TestViewRendersVisibleRows(t *testing.T) {
	l := newTestList(50)
	l.SetItems(testutil.Formulas(3))

	out := l.View(true)
	if !strings.Contains(out, "(1)") || !strings.Contains(out, "(3)") {
		t.Errorf("view missing rows:\n%s", out)
	}
	if !strings.Contains(out, "E = mc^2") {
		t.Errorf("view missing formula source:\n%s", out)
	}
	// Row 1 carries a note in the fixture data.
	if !strings.Contains(out, "Note 1") {
		t.Errorf("view missing note:\n%s", out)
	}
}

func TestViewPrefersPreviews(t *testing.T) {
	l := newTestList(50)
	l.SetItems(testutil.Formulas(1))
	l.SetPreviews(map[string]string{"formula-1": "E = mc²"})

	out := l.View(false)
	if !strings.Contains(out, "E = mc²") {
		t.Errorf("preview not used:\n%s", out)
	}
}

func TestEmptyListHint(t *testing.T) {
	l := newTestList(50)
	l.SetItems(nil)
	if !strings.Contains(l.View(true), "No formulas") {
		t.Error("empty state hint missing")
	}
}
