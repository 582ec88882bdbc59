// Package store maintains the in-memory state of a formulary session: the
// template category forest and the flat formula collection. All mutation
// goes through named operations; callers never reach into the slices
// directly. The store is written for the single-threaded bubbletea update
// loop and does no locking of its own.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/formulary-tui/formulary/pkg/debug"
	"github.com/formulary-tui/formulary/pkg/model"
)

// Operation errors. These are reported to the user at the boundary where
// the operation was attempted; none of them leave partial state behind.
var (
	// ErrMaxDepth means creating or moving a category would exceed
	// model.MaxCategoryDepth.
	ErrMaxDepth = errors.New("category tree depth limit reached")
	// ErrAllCategory means the operation targeted the synthetic "all"
	// scope, which cannot own templates and cannot be deleted.
	ErrAllCategory = errors.New(`the "all" scope is not a real category`)
	// ErrDuplicateName means a template with the same name already exists
	// in the category and the caller did not confirm the overwrite.
	ErrDuplicateName = errors.New("a template with this name already exists")
	// ErrNotFound means the referenced category or template does not exist.
	ErrNotFound = errors.New("not found")
	// ErrWouldCycle means moving a category under one of its own
	// descendants was refused.
	ErrWouldCycle = errors.New("cannot move a category into its own subtree")
)

// Tree is the template tree store: a flat list of categories with parent
// pointers, plus a memoized descendant index. The descendant cache is
// cleared wholesale on every structural mutation; stale entries would be a
// correctness bug (cascade deletes trust the cache), so invalidation errs
// on the side of clearing too often.
type Tree struct {
	categories []model.Category
	selected   string

	descCache map[string][]string
}

// NewTree returns an empty tree with the "all" scope selected.
func NewTree() *Tree {
	return &Tree{
		selected:  model.AllCategoryID,
		descCache: make(map[string][]string),
	}
}

// Categories returns the categories in insertion order. The slice is shared;
// callers must treat it as read-only.
func (t *Tree) Categories() []model.Category {
	return t.categories
}

// SelectedID returns the id of the currently selected category scope.
func (t *Tree) SelectedID() string {
	return t.selected
}

// Select sets the selected category scope. Unknown ids fall back to "all".
func (t *Tree) Select(id string) {
	if id == model.AllCategoryID || t.find(id) >= 0 {
		t.selected = id
		return
	}
	t.selected = model.AllCategoryID
}

// Category returns the category with the given id.
func (t *Tree) Category(id string) (model.Category, bool) {
	i := t.find(id)
	if i < 0 {
		return model.Category{}, false
	}
	return t.categories[i], true
}

// CreateCategory appends a new category under parentID. An empty parentID
// (or the "all" scope) creates a root. Returns ErrMaxDepth when the new
// node would sit deeper than model.MaxCategoryDepth. The caller decides
// whether to select or expand the new node.
func (t *Tree) CreateCategory(name, parentID string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, model.ErrEmptyName
	}
	if parentID == model.AllCategoryID {
		parentID = ""
	}
	if parentID != "" {
		if t.find(parentID) < 0 {
			return model.Category{}, fmt.Errorf("parent category: %w", ErrNotFound)
		}
		if t.depth(parentID)+1 > model.MaxCategoryDepth {
			return model.Category{}, ErrMaxDepth
		}
	}

	cat := model.Category{
		ID:       model.NewID("category"),
		Name:     name,
		ParentID: parentID,
	}
	t.categories = append(t.categories, cat)
	t.invalidate()
	debug.Log("created category %s under %q", cat.ID, parentID)
	return cat, nil
}

// RenameCategory changes a category's display name. The tree shape is
// untouched, so the descendant cache survives.
func (t *Tree) RenameCategory(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ErrEmptyName
	}
	i := t.find(id)
	if i < 0 {
		return ErrNotFound
	}
	t.categories[i].Name = name
	return nil
}

// MoveCategory reparents a category (empty newParentID makes it a root).
// The move is refused if it would place the subtree below the depth limit
// or create a cycle.
func (t *Tree) MoveCategory(id, newParentID string) error {
	if id == model.AllCategoryID {
		return ErrAllCategory
	}
	if newParentID == model.AllCategoryID {
		newParentID = ""
	}
	i := t.find(id)
	if i < 0 {
		return ErrNotFound
	}
	if newParentID != "" {
		if t.find(newParentID) < 0 {
			return fmt.Errorf("parent category: %w", ErrNotFound)
		}
		for _, d := range t.DescendantIDs(id) {
			if d == newParentID {
				return ErrWouldCycle
			}
		}
		if t.depth(newParentID)+t.subtreeHeight(id) > model.MaxCategoryDepth {
			return ErrMaxDepth
		}
	}
	t.categories[i].ParentID = newParentID
	t.invalidate()
	return nil
}

// DeleteCategory removes a category together with its whole subtree and
// every template owned by it. Deleting the "all" scope is refused. When the
// selection falls inside the removed set it is reset to "all".
func (t *Tree) DeleteCategory(id string) error {
	if id == model.AllCategoryID {
		return ErrAllCategory
	}
	if t.find(id) < 0 {
		return ErrNotFound
	}

	doomed := make(map[string]bool)
	for _, d := range t.DescendantIDs(id) {
		doomed[d] = true
	}

	kept := t.categories[:0]
	removed := 0
	for _, c := range t.categories {
		if doomed[c.ID] {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	t.categories = kept

	if doomed[t.selected] {
		t.selected = model.AllCategoryID
	}
	t.invalidate()
	debug.Log("deleted category %s (%d nodes)", id, removed)
	return nil
}

// SaveTemplate stores a template in the given category. Name and latex are
// trimmed and must be non-empty. When a template with the same name already
// exists in the category, the save only proceeds with confirmOverwrite set,
// replacing the existing entry in place (same id); otherwise it returns
// ErrDuplicateName and changes nothing.
func (t *Tree) SaveTemplate(categoryID, name, latex, note string, confirmOverwrite bool) (model.Template, error) {
	if categoryID == model.AllCategoryID {
		return model.Template{}, ErrAllCategory
	}
	i := t.find(categoryID)
	if i < 0 {
		return model.Template{}, ErrNotFound
	}
	name = strings.TrimSpace(name)
	latex = strings.TrimSpace(latex)
	note = strings.TrimSpace(note)
	if name == "" {
		return model.Template{}, model.ErrEmptyName
	}
	if latex == "" {
		return model.Template{}, model.ErrEmptyLaTeX
	}

	cat := &t.categories[i]
	for j := range cat.Templates {
		if cat.Templates[j].Name != name {
			continue
		}
		if !confirmOverwrite {
			return model.Template{}, ErrDuplicateName
		}
		cat.Templates[j].LaTeX = latex
		cat.Templates[j].Note = note
		return cat.Templates[j], nil
	}

	tpl := model.Template{
		ID:    model.NewID("template"),
		Name:  name,
		LaTeX: latex,
		Note:  note,
	}
	cat.Templates = append(cat.Templates, tpl)
	return tpl, nil
}

// RemoveTemplate deletes a single template from a category. The descendant
// cache is cleared even though the tree shape is unchanged; subtree counts
// derived from the cache must never observe the removed entry.
func (t *Tree) RemoveTemplate(categoryID, templateID string) error {
	i := t.find(categoryID)
	if i < 0 {
		return ErrNotFound
	}
	cat := &t.categories[i]
	for j := range cat.Templates {
		if cat.Templates[j].ID == templateID {
			cat.Templates = append(cat.Templates[:j], cat.Templates[j+1:]...)
			t.invalidate()
			return nil
		}
	}
	return ErrNotFound
}

// DescendantIDs returns the id set of the subtree rooted at id, including
// id itself, in a stable parent-before-child order. Results are memoized
// until the next structural mutation. The traversal carries a visited set
// so a malformed import with a parent cycle cannot loop forever.
func (t *Tree) DescendantIDs(id string) []string {
	if cached, ok := t.descCache[id]; ok {
		return cached
	}

	children := make(map[string][]string, len(t.categories))
	for _, c := range t.categories {
		if c.ParentID != "" {
			children[c.ParentID] = append(children[c.ParentID], c.ID)
		}
	}

	visited := make(map[string]bool)
	var ids []string
	var walk func(string)
	walk = func(cur string) {
		if visited[cur] {
			return
		}
		visited[cur] = true
		ids = append(ids, cur)
		for _, child := range children[cur] {
			walk(child)
		}
	}
	walk(id)

	t.descCache[id] = ids
	return ids
}

// TemplateCount returns the number of templates owned by the subtree rooted
// at id. For the "all" scope it counts every template in the tree.
func (t *Tree) TemplateCount(id string) int {
	n := 0
	if id == model.AllCategoryID {
		for _, c := range t.categories {
			n += len(c.Templates)
		}
		return n
	}
	member := make(map[string]bool)
	for _, d := range t.DescendantIDs(id) {
		member[d] = true
	}
	for _, c := range t.categories {
		if member[c.ID] {
			n += len(c.Templates)
		}
	}
	return n
}

// Library snapshots the tree as the persisted template document.
func (t *Tree) Library() model.Library {
	cats := make([]model.Category, len(t.categories))
	copy(cats, t.categories)
	return model.Library{
		Categories:         cats,
		SelectedCategoryID: t.selected,
	}
}

// ReplaceLibrary swaps in a freshly loaded document, e.g. after binding a
// template file. The previous selection survives only if it still exists.
func (t *Tree) ReplaceLibrary(lib model.Library) {
	t.categories = make([]model.Category, len(lib.Categories))
	copy(t.categories, lib.Categories)
	t.invalidate()
	t.Select(lib.SelectedCategoryID)
}

// Depth reports the depth of a category, counting roots as 1. Unknown ids
// report 0.
func (t *Tree) Depth(id string) int {
	if t.find(id) < 0 {
		return 0
	}
	return t.depth(id)
}

func (t *Tree) find(id string) int {
	for i := range t.categories {
		if t.categories[i].ID == id {
			return i
		}
	}
	return -1
}

// depth walks parent pointers with a visited guard; on a malformed cycle it
// reports the depth accumulated before the loop closed.
func (t *Tree) depth(id string) int {
	d := 0
	visited := make(map[string]bool)
	for cur := id; cur != "" && !visited[cur]; {
		visited[cur] = true
		d++
		i := t.find(cur)
		if i < 0 {
			break
		}
		cur = t.categories[i].ParentID
	}
	return d
}

// subtreeHeight is the height of the subtree rooted at id (a leaf is 1).
func (t *Tree) subtreeHeight(id string) int {
	base := t.depth(id)
	max := base
	for _, d := range t.DescendantIDs(id) {
		if dd := t.depth(d); dd > max {
			max = dd
		}
	}
	return max - base + 1
}

func (t *Tree) invalidate() {
	if len(t.descCache) > 0 {
		t.descCache = make(map[string][]string)
	}
}
