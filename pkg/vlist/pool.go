package vlist

// Pool recycles render handles released by an Engine so that scrolling does
// not allocate a fresh handle per row. It is a plain free list: the engine
// and its handles live on the single UI goroutine, so no synchronization is
// needed — only lifecycle correctness (a handle must not be handed out
// while a materialized slot still references it, which the Engine's
// release-before-create render pass guarantees).
type Pool[H any] struct {
	free  []H
	newFn func() H
	reset func(H) H
}

// NewPool creates a handle pool. newFn constructs a handle when the free
// list is empty; reset (optional) scrubs a recycled handle before reuse.
func NewPool[H any](newFn func() H, reset func(H) H) *Pool[H] {
	return &Pool[H]{newFn: newFn, reset: reset}
}

// Get returns a recycled handle, or a new one if none are free.
func (p *Pool[H]) Get() H {
	n := len(p.free)
	if n == 0 {
		return p.newFn()
	}
	h := p.free[n-1]
	p.free = p.free[:n-1]
	if p.reset != nil {
		h = p.reset(h)
	}
	return h
}

// Put returns a handle to the free list.
func (p *Pool[H]) Put(h H) {
	p.free = append(p.free, h)
}

// FreeCount returns the number of pooled handles.
func (p *Pool[H]) FreeCount() int {
	return len(p.free)
}
