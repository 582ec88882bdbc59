package store

import (
	"testing"

	"github.com/formulary-tui/formulary/pkg/model"
	"github.com/formulary-tui/formulary/pkg/testutil"
)

func searchNames(results []SearchResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Template.Name
	}
	return names
}

func TestSearchTemplates(t *testing.T) {
	tree := NewTree()
	tree.ReplaceLibrary(testutil.Library())

	cases := []struct {
		name  string
		query string
		scope string
		want  []string
	}{
		{"empty query lists everything", "", model.AllCategoryID, []string{"Quadratic", "Sine limit", "Euler"}},
		{"empty query respects scope", "", "cat-calculus", []string{"Sine limit", "Euler"}},
		{"name match is case-insensitive", "QUAD", model.AllCategoryID, []string{"Quadratic"}},
		{"note match", "classic", model.AllCategoryID, []string{"Sine limit"}},
		{"latex match", `\lim`, model.AllCategoryID, []string{"Sine limit", "Euler"}},
		{"scope excludes other subtrees", "quad", "cat-calculus", nil},
		{"no match", "fourier", model.AllCategoryID, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := searchNames(tree.SearchTemplates(tc.query, tc.scope))
			if len(got) != len(tc.want) {
				t.Fatalf("SearchTemplates(%q, %q) = %v, want %v", tc.query, tc.scope, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("result %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestSearchResultCarriesCategory(t *testing.T) {
	tree := NewTree()
	tree.ReplaceLibrary(testutil.Library())

	results := tree.SearchTemplates("euler", model.AllCategoryID)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].CategoryID != "cat-limits" || results[0].CategoryName != "Limits" {
		t.Errorf("owning category = %s (%s), want cat-limits (Limits)",
			results[0].CategoryID, results[0].CategoryName)
	}
}
