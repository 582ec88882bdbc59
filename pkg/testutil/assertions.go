// Package testutil provides shared helpers for formulary tests: assertion
// helpers over the core types and deterministic data generators.
package testutil

import (
	"testing"

	"github.com/formulary-tui/formulary/pkg/model"
)

// AssertFormulaCount verifies the expected number of formulas.
func AssertFormulaCount(t *testing.T, formulas []model.Formula, expected int) {
	t.Helper()
	if len(formulas) != expected {
		t.Errorf("expected %d formulas, got %d", expected, len(formulas))
	}
}

// AssertNoDuplicateIDs verifies all formula IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, formulas []model.Formula) {
	t.Helper()
	seen := make(map[string]bool)
	for _, f := range formulas {
		if seen[f.ID] {
			t.Errorf("duplicate formula ID: %s", f.ID)
		}
		seen[f.ID] = true
	}
}

// AssertAllValid verifies all formulas pass validation.
func AssertAllValid(t *testing.T, formulas []model.Formula) {
	t.Helper()
	for i, f := range formulas {
		if err := f.Validate(); err != nil {
			t.Errorf("formula %d (%s) invalid: %v", i, f.ID, err)
		}
	}
}

// AssertMonotonicIndices verifies formula indices are strictly increasing.
func AssertMonotonicIndices(t *testing.T, formulas []model.Formula) {
	t.Helper()
	for i := 1; i < len(formulas); i++ {
		if formulas[i].Index <= formulas[i-1].Index {
			t.Errorf("index not monotonic at position %d: %d then %d",
				i, formulas[i-1].Index, formulas[i].Index)
		}
	}
}

// AssertCategoryExists verifies a category id is present in the library.
func AssertCategoryExists(t *testing.T, lib model.Library, id string) {
	t.Helper()
	for _, c := range lib.Categories {
		if c.ID == id {
			return
		}
	}
	t.Errorf("category %s not found", id)
}

// AssertForest verifies every non-empty parent pointer resolves and that
// no category reaches itself through its ancestor chain.
func AssertForest(t *testing.T, lib model.Library) {
	t.Helper()
	byID := make(map[string]model.Category, len(lib.Categories))
	for _, c := range lib.Categories {
		byID[c.ID] = c
	}
	for _, c := range lib.Categories {
		if c.ParentID != "" {
			if _, ok := byID[c.ParentID]; !ok {
				t.Errorf("category %s has dangling parent %s", c.ID, c.ParentID)
			}
		}
		visited := make(map[string]bool)
		for cur := c.ParentID; cur != ""; {
			if cur == c.ID {
				t.Errorf("category %s is its own ancestor", c.ID)
				break
			}
			if visited[cur] {
				break
			}
			visited[cur] = true
			cur = byID[cur].ParentID
		}
	}
}
