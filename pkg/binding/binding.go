package binding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/formulary-tui/formulary/pkg/debug"
)

// DefaultSaveInterval is the periodic safety-net save cadence, forcing a
// write even when no debounce trigger fires.
const DefaultSaveInterval = 1 * time.Minute

// ErrUnbound means a save or load was attempted with no storage attached.
var ErrUnbound = errors.New("no storage bound")

// State is the binding lifecycle.
type State int

const (
	// Unbound means no storage is attached; edits stay in memory only.
	Unbound State = iota
	// Bound means autosave is active against an attached storage.
	Bound
)

// Config configures a Binding.
type Config struct {
	// Name labels the logical document ("formulas", "templates") in
	// debug output and error messages.
	Name string
	// Payload serializes the full current collection. It runs synchronously
	// on the goroutine calling MarkDirty or SaveNow, never on the internal
	// timer goroutines: the timers only write bytes captured at mark time,
	// so a Payload closing over the update loop's collections needs no
	// locking of its own.
	Payload func() ([]byte, error)
	// OnError receives the user-facing message when a write fails and the
	// binding drops to Unbound. Optional.
	OnError func(err error)
	// OnSaved is notified after each successful write. Optional.
	OnSaved func(at time.Time)

	DebounceDelay time.Duration // default DefaultDebounceDuration
	SaveInterval  time.Duration // default DefaultSaveInterval
}

// Binding associates one in-memory collection with one Storage and keeps
// the two converged through debounced and interval autosaves. Formulas and
// templates are bound independently; a Binding never holds more than one
// storage at a time.
//
// A write failure drops the binding to Unbound, stops both timers, and
// surfaces the error once. There is no automatic retry; the user rebinds
// explicitly.
type Binding struct {
	cfg       Config
	debouncer *Debouncer

	mu       sync.Mutex
	state    State
	storage  Storage
	pending  []byte // latest snapshot, written by the next flush
	dirty    bool
	lastSave time.Time
	cancel   context.CancelFunc
}

// New creates an unbound Binding.
func New(cfg Config) *Binding {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDuration
	}
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = DefaultSaveInterval
	}
	return &Binding{
		cfg:       cfg,
		debouncer: NewDebouncer(cfg.DebounceDelay),
	}
}

// State returns the current binding state.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Storage returns the attached storage, or nil when unbound.
func (b *Binding) Storage() Storage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storage
}

// Description returns the attached storage location, or "" when unbound.
func (b *Binding) Description() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storage == nil {
		return ""
	}
	return b.storage.Description()
}

// LastSave returns the time of the most recent successful write.
func (b *Binding) LastSave() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSave
}

// Bind attaches storage and starts the periodic save timer. Any previous
// binding is unbound first.
func (b *Binding) Bind(s Storage) {
	b.Unbind()

	b.mu.Lock()
	b.storage = s
	b.state = Bound
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	interval := b.cfg.SaveInterval
	b.mu.Unlock()

	go b.periodicLoop(ctx, interval)
	debug.Log("binding %s: bound to %s (%s)", b.cfg.Name, s.Description(), s.Kind())
}

// Unbind detaches storage and stops both autosave timers. Safe to call
// when already unbound.
func (b *Binding) Unbind() {
	b.debouncer.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.storage = nil
	b.state = Unbound
	b.pending = nil
	b.dirty = false
}

// Load reads the full document from the bound storage. A storage with no
// document yet yields ErrNoDocument.
func (b *Binding) Load() ([]byte, error) {
	b.mu.Lock()
	s := b.storage
	b.mu.Unlock()
	if s == nil {
		return nil, ErrUnbound
	}
	return s.Read()
}

// MarkDirty snapshots the serialized collection and schedules a debounced
// write of that snapshot. Rapid successive calls coalesce into one write of
// the latest snapshot after the quiet period. The snapshot is taken here,
// on the caller's goroutine; the timers never touch the live collection.
func (b *Binding) MarkDirty() {
	b.mu.Lock()
	bound := b.state == Bound
	b.mu.Unlock()
	if !bound {
		return
	}

	payload, err := b.cfg.Payload()
	if err != nil {
		b.fail(err)
		return
	}
	b.mu.Lock()
	b.pending = payload
	b.dirty = true
	b.mu.Unlock()

	b.debouncer.Trigger(func() {
		_ = b.flush()
	})
}

// SaveNow serializes the full collection and writes it immediately. On a
// write failure the binding transitions to Unbound, both timers stop, and
// the configured OnError is notified; the error is also returned. Like
// MarkDirty, serialization happens on the caller's goroutine.
func (b *Binding) SaveNow() error {
	b.mu.Lock()
	bound := b.state == Bound
	b.mu.Unlock()
	if !bound {
		return ErrUnbound
	}

	payload, err := b.cfg.Payload()
	if err != nil {
		b.fail(err)
		return err
	}
	b.mu.Lock()
	b.pending = payload
	b.dirty = true
	b.mu.Unlock()

	return b.flush()
}

// flush writes the outstanding snapshot, if any. Safe to call from the
// debounce and interval timer goroutines: it only moves captured bytes to
// the storage, never re-serializes.
func (b *Binding) flush() error {
	b.mu.Lock()
	s := b.storage
	bound := b.state == Bound
	payload := b.pending
	dirty := b.dirty
	b.dirty = false
	b.mu.Unlock()
	if !bound || s == nil {
		return ErrUnbound
	}
	if !dirty {
		return nil
	}

	if err := s.Write(payload); err != nil {
		b.fail(err)
		return err
	}

	now := time.Now()
	b.mu.Lock()
	b.lastSave = now
	b.mu.Unlock()
	if b.cfg.OnSaved != nil {
		b.cfg.OnSaved(now)
	}
	return nil
}

// fail drops the binding to Unbound and reports the error once.
func (b *Binding) fail(err error) {
	debug.Log("binding %s: save failed, unbinding: %v", b.cfg.Name, err)
	b.Unbind()
	if b.cfg.OnError != nil {
		b.cfg.OnError(err)
	}
}

// periodicLoop flushes the outstanding snapshot every interval, as a safety
// net against debounce triggers that never settled.
func (b *Binding) periodicLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = b.flush()
		}
	}
}
