package render

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/formulary-tui/formulary/pkg/debug"
)

// DefaultTimeout bounds how long a caller waits for one render result.
const DefaultTimeout = 2 * time.Second

// ErrTimeout means a render request was rejected locally after its
// deadline. The worker itself keeps running; a late result for the request
// is dropped when it arrives.
var ErrTimeout = errors.New("render request timed out")

// ErrStopped means the worker is no longer accepting requests.
var ErrStopped = errors.New("render worker stopped")

// Result is the worker's answer to one request.
type Result struct {
	ID   uint64
	Text string
	Err  error
}

type request struct {
	id    uint64
	latex string
}

// Worker renders LaTeX off the UI goroutine. It shares no mutable state
// with the caller: requests and results are message-passed, matched by a
// unique request id. A result with no matching pending entry — the caller
// timed out or resolved the slot another way — is dropped, and whichever
// result lands last for a given slot wins.
type Worker struct {
	timeout  time.Duration
	requests chan request

	mu      sync.Mutex
	pending map[uint64]chan Result

	nextID  atomic.Uint64
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// WorkerConfig configures a Worker. Zero values use defaults.
type WorkerConfig struct {
	Timeout   time.Duration // default DefaultTimeout
	QueueSize int           // default 16
}

// NewWorker creates a worker. Call Start before submitting requests.
func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		timeout:  cfg.Timeout,
		requests: make(chan request, cfg.QueueSize),
		pending:  make(map[uint64]chan Result),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine. Starting twice is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.loop()
}

// Stop shuts the worker down and rejects all pending requests. Only the
// loop closes done, so waiting on it is skipped when Start never ran.
func (w *Worker) Stop() {
	w.cancel()

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.pending {
		ch <- Result{ID: id, Err: ErrStopped}
		delete(w.pending, id)
	}
}

// Submit queues a render request and returns its id plus the channel its
// result will arrive on. The channel is buffered; the result is delivered
// without blocking the worker.
func (w *Worker) Submit(latex string) (uint64, <-chan Result) {
	id := w.nextID.Add(1)
	ch := make(chan Result, 1)

	w.mu.Lock()
	w.pending[id] = ch
	w.mu.Unlock()

	// Reject eagerly once stopped; the queue is buffered, so the select
	// below could otherwise enqueue into a dead worker.
	select {
	case <-w.ctx.Done():
		w.reject(id, ErrStopped)
		return id, ch
	default:
	}

	select {
	case w.requests <- request{id: id, latex: latex}:
	case <-w.ctx.Done():
		w.reject(id, ErrStopped)
	}
	return id, ch
}

// Render submits a request and waits for its result, the worker timeout,
// or ctx cancellation, whichever comes first. On timeout the pending entry
// is removed so the eventual result is dropped; the worker is not reset.
func (w *Worker) Render(ctx context.Context, latex string) (string, error) {
	id, ch := w.Submit(latex)

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.Text, res.Err
	case <-timer.C:
		w.drop(id)
		debug.Log("render request %d timed out", id)
		return "", ErrTimeout
	case <-ctx.Done():
		w.drop(id)
		return "", ctx.Err()
	}
}

// RenderAll renders a batch concurrently through the worker. Entries that
// fail render as their error text is an empty string; the first error is
// returned alongside the partial results.
func (w *Worker) RenderAll(ctx context.Context, inputs []string) ([]string, error) {
	out := make([]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, latex := range inputs {
		g.Go(func() error {
			text, err := w.Render(ctx, latex)
			if err != nil {
				return err
			}
			out[i] = text
			return nil
		})
	}
	err := g.Wait()
	return out, err
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case req := <-w.requests:
			text, err := Translate(req.latex)
			w.deliver(Result{ID: req.id, Text: text, Err: err})
		}
	}
}

// deliver hands a result to its pending channel. Results whose request is
// no longer pending are dropped.
func (w *Worker) deliver(res Result) {
	w.mu.Lock()
	ch, ok := w.pending[res.ID]
	if ok {
		delete(w.pending, res.ID)
	}
	w.mu.Unlock()
	if !ok {
		debug.Log("dropping stale render result %d", res.ID)
		return
	}
	ch <- res
}

// drop removes a pending entry without delivering anything.
func (w *Worker) drop(id uint64) {
	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
}

// reject delivers an error result for a request that never reached the
// worker.
func (w *Worker) reject(id uint64, err error) {
	w.deliver(Result{ID: id, Err: err})
}
