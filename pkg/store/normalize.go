package store

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/formulary-tui/formulary/pkg/model"
)

// Import errors. The import path distinguishes "you picked the wrong kind
// of file" from "the file is broken"; everything below the top-level shape
// is filtered entry by entry instead of aborting.
var (
	// ErrMalformedJSON means the file content is not valid JSON at all.
	ErrMalformedJSON = errors.New("file content is not valid JSON")
	// ErrTemplateFile means a template library was offered where a formula
	// collection was expected.
	ErrTemplateFile = errors.New("this is a template library file; bind it as templates instead")
	// ErrNotFormulaArray means the top-level shape is wrong for a formula
	// collection.
	ErrNotFormulaArray = errors.New("a formula collection must be a JSON array")
)

// NormalizeFormulas parses raw file content into a formula list. Entries
// without a non-empty latex are dropped; missing ids and indices are
// synthesized from the entry's position. Only a fundamentally wrong
// top-level shape aborts the import.
func NormalizeFormulas(content []byte) ([]model.Formula, error) {
	var value any
	if err := json.Unmarshal(content, &value); err != nil {
		return nil, ErrMalformedJSON
	}

	arr, ok := value.([]any)
	if !ok {
		if obj, isObj := value.(map[string]any); isObj {
			if _, hasCats := obj["categories"]; hasCats {
				return nil, ErrTemplateFile
			}
		}
		return nil, ErrNotFormulaArray
	}

	var out []model.Formula
	for idx, raw := range arr {
		obj, isObj := raw.(map[string]any)
		if !isObj {
			continue
		}
		latex := trimmedString(obj["latex"])
		if latex == "" {
			continue
		}
		id := trimmedString(obj["id"])
		if id == "" {
			id = fmt.Sprintf("formula-%d", idx+1)
		}
		index := idx + 1
		if n, isNum := obj["index"].(float64); isNum && n >= 1 {
			index = int(n)
		}
		out = append(out, model.Formula{
			ID:    id,
			Index: index,
			LaTeX: latex,
			Note:  trimmedString(obj["note"]),
		})
	}
	return out, nil
}

// NormalizeTree parses raw file content into a flat category list. It
// accepts both the flat {categories: [...]} document and legacy nested
// shapes where children live under "categories" or "children". Recursion is
// bounded at model.MaxCategoryDepth: deeper nodes are dropped, not errored.
// Templates without a non-empty latex are dropped.
func NormalizeTree(content []byte) (model.Library, error) {
	var value any
	if err := json.Unmarshal(content, &value); err != nil {
		return model.Library{}, ErrMalformedJSON
	}

	root := value
	if obj, isObj := value.(map[string]any); isObj {
		if cats, hasCats := obj["categories"]; hasCats {
			root = cats
		}
	}

	var categories []model.Category
	walkCategories(root, "", 1, &categories)

	selected := ""
	if len(categories) > 0 {
		selected = categories[0].ID
	}
	return model.Library{Categories: categories, SelectedCategoryID: selected}, nil
}

func walkCategories(value any, parentID string, depth int, acc *[]model.Category) {
	if depth > model.MaxCategoryDepth {
		return
	}
	arr, ok := value.([]any)
	if !ok {
		return
	}
	for idx, raw := range arr {
		obj, isObj := raw.(map[string]any)
		if !isObj {
			continue
		}
		name := trimmedString(obj["name"])
		if name == "" {
			name = fmt.Sprintf("Category %d", idx+1)
		}
		id := trimmedString(obj["id"])
		if id == "" {
			id = fmt.Sprintf("category-%d-%d", depth, idx+1)
		}

		var templates []model.Template
		if rawTemplates, isArr := obj["templates"].([]any); isArr {
			for tidx, rawTpl := range rawTemplates {
				tpl, isTpl := rawTpl.(map[string]any)
				if !isTpl {
					continue
				}
				latex := trimmedString(tpl["latex"])
				if latex == "" {
					continue
				}
				tplName := trimmedString(tpl["name"])
				if tplName == "" {
					tplName = fmt.Sprintf("Template %d", tidx+1)
				}
				tplID := trimmedString(tpl["id"])
				if tplID == "" {
					tplID = fmt.Sprintf("template-%s-%d", id, tidx+1)
				}
				templates = append(templates, model.Template{
					ID:    tplID,
					Name:  tplName,
					LaTeX: latex,
					Note:  trimmedString(tpl["note"]),
				})
			}
		}

		parent := trimmedString(obj["parentId"])
		if parent == "" {
			parent = parentID
		}
		*acc = append(*acc, model.Category{
			ID:        id,
			Name:      name,
			Templates: templates,
			ParentID:  parent,
		})

		children := obj["categories"]
		if children == nil {
			children = obj["children"]
		}
		if children != nil {
			walkCategories(children, id, depth+1, acc)
		}
	}
}

func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
