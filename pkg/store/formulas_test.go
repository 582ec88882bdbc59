package store

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/formulary-tui/formulary/pkg/model"
	"github.com/formulary-tui/formulary/pkg/testutil"
)

func TestAddAssignsMonotonicIndices(t *testing.T) {
	f := NewFormulas()
	for i := 0; i < 5; i++ {
		if _, err := f.Add(`x^2`, ""); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	testutil.AssertFormulaCount(t, f.All(), 5)
	testutil.AssertMonotonicIndices(t, f.All())
	testutil.AssertNoDuplicateIDs(t, f.All())
	if f.All()[4].Index != 5 {
		t.Errorf("fifth formula index = %d, want 5", f.All()[4].Index)
	}
}

func TestAddRejectsEmptyLaTeX(t *testing.T) {
	f := NewFormulas()
	if _, err := f.Add("   ", "note"); !errors.Is(err, model.ErrEmptyLaTeX) {
		t.Fatalf("expected ErrEmptyLaTeX, got %v", err)
	}
	if f.Len() != 0 {
		t.Errorf("failed add left %d entries", f.Len())
	}
}

func TestRemoveLeavesIndexGaps(t *testing.T) {
	f := NewFormulas()
	var ids []string
	for i := 0; i < 3; i++ {
		entry, _ := f.Add(`y`, "")
		ids = append(ids, entry.ID)
	}

	if !f.Remove(ids[1]) {
		t.Fatal("remove of existing formula reported false")
	}
	if f.Remove(ids[1]) {
		t.Error("second remove of the same id reported true")
	}

	// Deletion never recycles an index: the next add continues the count.
	next, _ := f.Add(`z`, "")
	if next.Index != 4 {
		t.Errorf("index after a deletion = %d, want 4", next.Index)
	}
	testutil.AssertMonotonicIndices(t, f.All())
}

func TestUpdatePreservesIdentity(t *testing.T) {
	f := NewFormulas()
	entry, _ := f.Add(`a`, "old")

	if err := f.Update(entry.ID, `b`, "new"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := f.Get(entry.ID)
	if !ok {
		t.Fatal("updated formula vanished")
	}
	if got.Index != entry.Index || got.ID != entry.ID {
		t.Errorf("update changed identity: %+v vs %+v", got, entry)
	}
	if got.LaTeX != `b` || got.Note != "new" {
		t.Errorf("update content: %+v", got)
	}

	if err := f.Update("missing", `x`, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of unknown id: expected ErrNotFound, got %v", err)
	}
	if err := f.Update(entry.ID, "  ", ""); !errors.Is(err, model.ErrEmptyLaTeX) {
		t.Errorf("update to empty latex: expected ErrEmptyLaTeX, got %v", err)
	}
}

func TestClearResetsNumbering(t *testing.T) {
	f := NewFormulas()
	f.Add(`a`, "")
	f.Add(`b`, "")
	f.Clear()
	if f.Len() != 0 || f.NextIndex() != 1 {
		t.Fatalf("after clear: len=%d next=%d", f.Len(), f.NextIndex())
	}
}

func TestReplaceRecomputesCounter(t *testing.T) {
	f := NewFormulas()
	f.Replace(testutil.Formulas(3))
	if got := f.NextIndex(); got != 4 {
		t.Errorf("NextIndex after replace = %d, want 4", got)
	}

	// Imported indices with gaps still continue past the maximum.
	f.Replace([]model.Formula{
		{ID: "f-1", Index: 2, LaTeX: `a`},
		{ID: "f-2", Index: 9, LaTeX: `b`},
	})
	entry, _ := f.Add(`c`, "")
	if entry.Index != 10 {
		t.Errorf("index after gapped import = %d, want 10", entry.Index)
	}
}

func TestReplaceCounterProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		entries := rapid.SliceOfN(testutil.FormulaGen(), 0, 20).Draw(rt, "entries")
		f := NewFormulas()
		f.Replace(entries)
		for _, e := range f.All() {
			if e.Index >= f.NextIndex() {
				rt.Fatalf("existing index %d >= next index %d", e.Index, f.NextIndex())
			}
		}
	})
}
