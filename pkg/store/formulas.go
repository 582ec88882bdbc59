package store

import (
	"strings"

	"github.com/formulary-tui/formulary/pkg/model"
)

// Formulas is the flat formula collection. Each formula carries a display
// index assigned from a monotonic counter; the counter never reuses an
// index after a deletion, so numbering stays stable for the session.
type Formulas struct {
	entries   []model.Formula
	nextIndex int
}

// NewFormulas returns an empty collection with numbering starting at 1.
func NewFormulas() *Formulas {
	return &Formulas{nextIndex: 1}
}

// All returns the formulas in display order. The slice is shared; callers
// must treat it as read-only.
func (f *Formulas) All() []model.Formula {
	return f.entries
}

// Len returns the number of formulas.
func (f *Formulas) Len() int {
	return len(f.entries)
}

// Get returns the formula with the given id.
func (f *Formulas) Get(id string) (model.Formula, bool) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.Formula{}, false
}

// Add appends a new formula and assigns it the next index.
func (f *Formulas) Add(latex, note string) (model.Formula, error) {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return model.Formula{}, model.ErrEmptyLaTeX
	}
	entry := model.Formula{
		ID:    model.NewID("formula"),
		Index: f.nextIndex,
		LaTeX: latex,
		Note:  strings.TrimSpace(note),
	}
	f.nextIndex++
	f.entries = append(f.entries, entry)
	return entry, nil
}

// Update rewrites the latex and note of an existing formula in place.
// Index and id are preserved.
func (f *Formulas) Update(id, latex, note string) error {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return model.ErrEmptyLaTeX
	}
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].LaTeX = latex
			f.entries[i].Note = strings.TrimSpace(note)
			return nil
		}
	}
	return ErrNotFound
}

// Remove deletes the formula with the given id. The numbering counter is
// left alone, so remaining indices keep their gaps.
func (f *Formulas) Remove(id string) bool {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every formula and resets numbering.
func (f *Formulas) Clear() {
	f.entries = nil
	f.nextIndex = 1
}

// Replace swaps in a freshly imported list and recomputes the numbering
// counter as max(existing index) + 1.
func (f *Formulas) Replace(entries []model.Formula) {
	f.entries = make([]model.Formula, len(entries))
	copy(f.entries, entries)
	f.nextIndex = 1
	for _, e := range f.entries {
		if e.Index >= f.nextIndex {
			f.nextIndex = e.Index + 1
		}
	}
}

// NextIndex exposes the numbering counter, mainly for tests and the
// status line.
func (f *Formulas) NextIndex() int {
	return f.nextIndex
}
