package export

import (
	json "github.com/goccy/go-json"

	"github.com/formulary-tui/formulary/pkg/model"
)

// FormulasJSON serializes the formula collection as indented JSON. This is
// both the export artifact and the autosave payload; re-importing it
// through store.NormalizeFormulas round-trips the collection.
func FormulasJSON(formulas []model.Formula) ([]byte, error) {
	if formulas == nil {
		formulas = []model.Formula{}
	}
	return json.MarshalIndent(formulas, "", "  ")
}

// LibraryJSON serializes the template library document as indented JSON.
func LibraryJSON(lib model.Library) ([]byte, error) {
	if lib.Categories == nil {
		lib.Categories = []model.Category{}
	}
	return json.MarshalIndent(lib, "", "  ")
}
