// Package model defines the core data types for formulary: formulas,
// templates, and template categories. The JSON shapes here are the
// persisted document formats, so field tags are load-bearing.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxCategoryDepth bounds the template category tree. Depth is counted from
// the root (a root category has depth 1). Imports deeper than this are
// truncated; interactive creation beyond it is refused.
const MaxCategoryDepth = 6

// AllCategoryID is the id of the synthetic "all categories" scope. It is not
// a real category: it cannot own templates and cannot be deleted.
const AllCategoryID = "all"

// Validation errors shared across the store and the import path.
var (
	ErrEmptyName  = errors.New("name must not be empty")
	ErrEmptyLaTeX = errors.New("latex must not be empty")
)

// Formula is a single numbered LaTeX entry, the primary user-authored
// content unit. Formulas form a flat list; Index is a display counter that
// stays monotonic but not necessarily contiguous after deletions.
type Formula struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	LaTeX string `json:"latex"`
	Note  string `json:"note,omitempty"`
}

// Validate checks that the formula can be stored.
func (f Formula) Validate() error {
	if strings.TrimSpace(f.LaTeX) == "" {
		return ErrEmptyLaTeX
	}
	return nil
}

// Template is a named, reusable LaTeX snippet owned by exactly one category.
type Template struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	LaTeX string `json:"latex"`
	Note  string `json:"note,omitempty"`
}

// Validate checks that the template can be stored.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.LaTeX) == "" {
		return ErrEmptyLaTeX
	}
	return nil
}

// Category is a node in the template forest. ParentID is empty for roots.
// Templates are owned exclusively by their category and are cascaded away
// with it on delete.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Templates []Template `json:"templates"`
	ParentID  string     `json:"parentId,omitempty"`
}

// Library is the persisted template document: the flattened category forest
// plus the category that was selected when the document was written.
type Library struct {
	Categories         []Category `json:"categories"`
	SelectedCategoryID string     `json:"selectedCategoryId"`
}

// NewID returns a fresh id with the given kind prefix, e.g. "formula-1b9d...".
// Interactive creation uses random ids; import normalization synthesizes
// positional ids instead (see store.NormalizeTree).
func NewID(kind string) string {
	return fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8])
}
