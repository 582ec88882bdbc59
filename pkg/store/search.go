package store

import (
	"strings"

	"github.com/formulary-tui/formulary/pkg/model"
)

// SearchResult pairs a matching template with its owning category.
type SearchResult struct {
	CategoryID   string
	CategoryName string
	Template     model.Template
}

// SearchTemplates returns the templates whose name, note, or latex contains
// the query, case-insensitively. scopeID limits the search to the subtree
// rooted at that category; the "all" scope searches everything. An empty
// query returns every template in scope.
func (t *Tree) SearchTemplates(query, scopeID string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))

	inScope := func(string) bool { return true }
	if scopeID != "" && scopeID != model.AllCategoryID {
		member := make(map[string]bool)
		for _, id := range t.DescendantIDs(scopeID) {
			member[id] = true
		}
		inScope = func(id string) bool { return member[id] }
	}

	var results []SearchResult
	for _, cat := range t.categories {
		if !inScope(cat.ID) {
			continue
		}
		for _, tpl := range cat.Templates {
			if query != "" && !templateMatches(tpl, query) {
				continue
			}
			results = append(results, SearchResult{
				CategoryID:   cat.ID,
				CategoryName: cat.Name,
				Template:     tpl,
			})
		}
	}
	return results
}

func templateMatches(tpl model.Template, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(tpl.Name), loweredQuery) ||
		strings.Contains(strings.ToLower(tpl.Note), loweredQuery) ||
		strings.Contains(strings.ToLower(tpl.LaTeX), loweredQuery)
}
