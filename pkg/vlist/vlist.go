// Package vlist implements windowed rendering over long item sequences:
// only the slice of items intersecting the viewport (plus a fixed buffer)
// is ever materialized, so render work is bounded by the viewport size
// rather than the collection size.
//
// The engine has no opinion on when windowing is worth it; the caller
// switches between plain rendering and an Engine based on its own size
// threshold.
package vlist

import "fmt"

// State is the engine lifecycle. Scroll and item updates are only handled
// while Active.
type State int

const (
	// Uninitialized means New has run but no viewport is attached yet.
	Uninitialized State = iota
	// Active means the engine is attached and rendering.
	Active
	// Destroyed means every handle has been released; the engine must not
	// be reused.
	Destroyed
)

// Hooks are the caller-supplied callbacks that materialize, recycle, and
// position render handles. Create and Update run only for items inside the
// visible window; Release runs exactly once for every handle that leaves
// it. Update may return a replacement handle.
type Hooks[T, H any] struct {
	ID      func(item T) string
	Create  func(item T, index int) H
	Update  func(h H, item T, index int) H
	Release func(h H)
	// Place positions a handle at its absolute offset (index * ItemExtent).
	// Optional.
	Place func(h H, offset int)
}

// Config sizes the window. ItemExtent is the uniform per-item extent;
// variable-extent items are out of scope.
type Config struct {
	ItemExtent     int
	ViewportExtent int
	BufferCount    int
}

// Engine renders a window over a borrowed, read-only item sequence. It owns
// only its handle map; the items belong to the caller.
type Engine[T, H any] struct {
	cfg   Config
	hooks Hooks[T, H]

	state        State
	items        []T
	scrollOffset int
	pendingScroll int
	scrollDirty  bool

	visibleStart int
	visibleEnd   int
	handles      map[string]H
}

// New creates an engine. It stays Uninitialized until Attach.
func New[T, H any](cfg Config, hooks Hooks[T, H]) (*Engine[T, H], error) {
	if cfg.ItemExtent <= 0 {
		return nil, fmt.Errorf("item extent must be positive, got %d", cfg.ItemExtent)
	}
	if cfg.BufferCount < 0 {
		return nil, fmt.Errorf("buffer count must not be negative, got %d", cfg.BufferCount)
	}
	if hooks.ID == nil || hooks.Create == nil {
		return nil, fmt.Errorf("ID and Create hooks are required")
	}
	return &Engine[T, H]{
		cfg:     cfg,
		hooks:   hooks,
		handles: make(map[string]H),
	}, nil
}

// Attach activates the engine against a viewport of the given extent and
// performs the initial render pass.
func (e *Engine[T, H]) Attach(items []T, viewportExtent int) {
	if e.state == Destroyed {
		return
	}
	e.cfg.ViewportExtent = viewportExtent
	e.items = items
	e.state = Active
	e.recompute()
	e.render()
}

// State returns the engine lifecycle state.
func (e *Engine[T, H]) State() State {
	return e.state
}

// TotalExtent is the full scrollable extent: itemCount * itemExtent.
func (e *Engine[T, H]) TotalExtent() int {
	return len(e.items) * e.cfg.ItemExtent
}

// VisibleRange returns the half-open index range currently materialized.
func (e *Engine[T, H]) VisibleRange() (start, end int) {
	return e.visibleStart, e.visibleEnd
}

// ScrollOffset returns the applied scroll offset.
func (e *Engine[T, H]) ScrollOffset() int {
	return e.scrollOffset
}

// MaterializedCount returns the number of live render handles.
func (e *Engine[T, H]) MaterializedCount() int {
	return len(e.handles)
}

// Handle returns the live handle for an item id, if it is materialized.
func (e *Engine[T, H]) Handle(id string) (H, bool) {
	h, ok := e.handles[id]
	return h, ok
}

// NotifyScroll records a scroll position without rendering. Multiple
// notifications within one frame collapse into the single recompute done
// by the next RenderFrame call, which is how fast wheel scrolling avoids
// redundant render passes.
func (e *Engine[T, H]) NotifyScroll(offset int) {
	if e.state != Active {
		return
	}
	e.pendingScroll = offset
	e.scrollDirty = true
}

// RenderFrame applies the latest pending scroll, if any, and re-renders.
// Call once per display frame.
func (e *Engine[T, H]) RenderFrame() {
	if e.state != Active {
		return
	}
	if e.scrollDirty {
		e.scrollOffset = e.clampScroll(e.pendingScroll)
		e.scrollDirty = false
	}
	e.recompute()
	e.render()
}

// Scroll sets the scroll offset and renders immediately. Equivalent to
// NotifyScroll followed by RenderFrame.
func (e *Engine[T, H]) Scroll(offset int) {
	e.NotifyScroll(offset)
	e.RenderFrame()
}

// ScrollToIndex jumps the viewport so the item at index i sits at the top.
// No smooth scrolling is implied.
func (e *Engine[T, H]) ScrollToIndex(i int) {
	e.Scroll(i * e.cfg.ItemExtent)
}

// UpdateItems replaces the backing sequence, recomputes the window against
// the new length, and re-renders. Used when the collection is filtered or
// mutated externally.
func (e *Engine[T, H]) UpdateItems(items []T) {
	if e.state != Active {
		return
	}
	e.items = items
	e.scrollOffset = e.clampScroll(e.scrollOffset)
	e.recompute()
	e.render()
}

// SetViewportExtent resizes the viewport and re-renders.
func (e *Engine[T, H]) SetViewportExtent(extent int) {
	if e.state != Active {
		return
	}
	e.cfg.ViewportExtent = extent
	e.scrollOffset = e.clampScroll(e.scrollOffset)
	e.recompute()
	e.render()
}

// Destroy releases every materialized handle and detaches the engine.
// The instance must not be reused afterwards.
func (e *Engine[T, H]) Destroy() {
	if e.state == Destroyed {
		return
	}
	if e.hooks.Release != nil {
		for _, h := range e.handles {
			e.hooks.Release(h)
		}
	}
	e.handles = make(map[string]H)
	e.items = nil
	e.visibleStart, e.visibleEnd = 0, 0
	e.state = Destroyed
}

func (e *Engine[T, H]) clampScroll(offset int) int {
	maxOffset := e.TotalExtent() - e.cfg.ViewportExtent
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

// recompute derives the visible window from the scroll position:
//
//	rawStart        = floor(scrollOffset / itemExtent)
//	rawVisibleCount = ceil(viewportExtent / itemExtent)
//	visibleStart    = max(0, rawStart - bufferCount)
//	visibleEnd      = min(itemCount, rawStart + rawVisibleCount + bufferCount)
func (e *Engine[T, H]) recompute() {
	rawStart := e.scrollOffset / e.cfg.ItemExtent
	rawVisibleCount := (e.cfg.ViewportExtent + e.cfg.ItemExtent - 1) / e.cfg.ItemExtent

	start := rawStart - e.cfg.BufferCount
	if start < 0 {
		start = 0
	}
	end := rawStart + rawVisibleCount + e.cfg.BufferCount
	if end > len(e.items) {
		end = len(e.items)
	}
	if start > end {
		start = end
	}
	e.visibleStart, e.visibleEnd = start, end
}

// render reconciles the handle map against the visible window: handles
// outside the window are released, handles inside are updated in place,
// missing ones are created.
func (e *Engine[T, H]) render() {
	wanted := make(map[string]int, e.visibleEnd-e.visibleStart)
	for i := e.visibleStart; i < e.visibleEnd; i++ {
		wanted[e.hooks.ID(e.items[i])] = i
	}

	for id, h := range e.handles {
		if _, keep := wanted[id]; !keep {
			if e.hooks.Release != nil {
				e.hooks.Release(h)
			}
			delete(e.handles, id)
		}
	}

	for i := e.visibleStart; i < e.visibleEnd; i++ {
		item := e.items[i]
		id := e.hooks.ID(item)
		h, exists := e.handles[id]
		if exists {
			if e.hooks.Update != nil {
				h = e.hooks.Update(h, item, i)
			}
		} else {
			h = e.hooks.Create(item, i)
		}
		e.handles[id] = h
		if e.hooks.Place != nil {
			e.hooks.Place(h, i*e.cfg.ItemExtent)
		}
	}
}
