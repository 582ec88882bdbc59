package vlist

import "testing"

func TestPoolRecyclesHandles(t *testing.T) {
	allocs := 0
	pool := NewPool(
		func() *handle { allocs++; return &handle{} },
		func(h *handle) *handle { h.id = ""; h.index = 0; return h },
	)

	a := pool.Get()
	if allocs != 1 {
		t.Fatalf("empty pool allocated %d handles, want 1", allocs)
	}
	a.id = "dirty"
	a.index = 7
	pool.Put(a)
	if pool.FreeCount() != 1 {
		t.Fatalf("free count = %d, want 1", pool.FreeCount())
	}

	b := pool.Get()
	if allocs != 1 {
		t.Errorf("recycled get allocated again: %d allocations", allocs)
	}
	if b != a {
		t.Error("pool handed out a different handle than was freed")
	}
	if b.id != "" || b.index != 0 {
		t.Errorf("recycled handle not reset: %+v", b)
	}
}

func TestPoolLIFO(t *testing.T) {
	pool := NewPool(func() *handle { return &handle{} }, nil)
	first := pool.Get()
	second := pool.Get()
	pool.Put(first)
	pool.Put(second)

	if got := pool.Get(); got != second {
		t.Error("pool is not LIFO: most recently freed handle not reused first")
	}
}

func TestEngineWithPool(t *testing.T) {
	allocs := 0
	pool := NewPool(
		func() *handle { allocs++; return &handle{} },
		func(h *handle) *handle { h.id = ""; return h },
	)
	hooks := Hooks[item, *handle]{
		ID: func(it item) string { return it.id },
		Create: func(it item, i int) *handle {
			h := pool.Get()
			h.id = it.id
			h.index = i
			return h
		},
		Update: func(h *handle, it item, i int) *handle {
			h.index = i
			return h
		},
		Release: func(h *handle) { pool.Put(h) },
	}

	e, err := New(Config{ItemExtent: 10, BufferCount: 0}, hooks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Attach(makeItems(100), 30)
	if allocs != 3 {
		t.Fatalf("attach allocated %d handles, want 3", allocs)
	}

	// Scrolling recycles the departing handles into the new window: the
	// render pass releases before it creates, so no fresh allocation.
	e.Scroll(300)
	e.Scroll(700)
	if allocs != 3 {
		t.Errorf("scrolling allocated %d handles total, want the window size 3", allocs)
	}

	e.Destroy()
	if got := pool.FreeCount(); got != 3 {
		t.Errorf("pool holds %d handles after destroy, want 3", got)
	}
}
