package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultQueueSize    = 1024
	defaultDrainTimeout = 5 * time.Second
)

// teeHandler writes every record to each sink that accepts its level.
type teeHandler struct {
	sinks []slog.Handler
}

// tee combines handlers, skipping nil ones. A single sink is returned as is.
func tee(handlers ...slog.Handler) slog.Handler {
	sinks := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			sinks = append(sinks, h)
		}
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &teeHandler{sinks: sinks}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range t.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range t.sinks {
		if s.Enabled(ctx, r.Level) {
			// Each sink gets its own copy; handlers may append attrs.
			errs = append(errs, s.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	sinks := make([]slog.Handler, len(t.sinks))
	for i, s := range t.sinks {
		sinks[i] = fn(s)
	}
	return &teeHandler{sinks: sinks}
}

// QueueOptions tunes the background shipping queue.
type QueueOptions struct {
	Size         int
	DrainTimeout time.Duration
}

type queuedRecord struct {
	ctx    context.Context
	record slog.Record
	sink   slog.Handler
}

// shipQueue is the single worker shared by a QueuedHandler and its derivatives.
type shipQueue struct {
	mu      sync.RWMutex
	closed  bool
	records chan queuedRecord
	done    chan struct{}
	dropped atomic.Uint64
	timeout time.Duration
}

func newShipQueue(opts QueueOptions) *shipQueue {
	size := opts.Size
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := opts.DrainTimeout
	if timeout <= 0 {
		timeout = defaultDrainTimeout
	}

	q := &shipQueue{
		records: make(chan queuedRecord, size),
		done:    make(chan struct{}),
		timeout: timeout,
	}
	go func() {
		defer close(q.done)
		for rec := range q.records {
			_ = rec.sink.Handle(rec.ctx, rec.record)
		}
	}()
	return q
}

func (q *shipQueue) push(rec queuedRecord) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	select {
	case q.records <- rec:
	default:
		q.dropped.Add(1)
	}
}

func (q *shipQueue) drain(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.records)
	q.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueuedHandler hands records to a background worker so shipping logs to a
// remote sink never blocks a request. Records are dropped when the queue is
// full.
type QueuedHandler struct {
	queue *shipQueue
	sink  slog.Handler
}

// NewQueuedHandler starts the worker and wraps sink.
func NewQueuedHandler(sink slog.Handler, opts QueueOptions) *QueuedHandler {
	return &QueuedHandler{queue: newShipQueue(opts), sink: sink}
}

func (h *QueuedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.sink.Enabled(ctx, level)
}

func (h *QueuedHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.sink.Enabled(ctx, r.Level) {
		h.queue.push(queuedRecord{ctx: context.WithoutCancel(ctx), record: r.Clone(), sink: h.sink})
	}
	return nil
}

func (h *QueuedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &QueuedHandler{queue: h.queue, sink: h.sink.WithAttrs(attrs)}
}

func (h *QueuedHandler) WithGroup(name string) slog.Handler {
	return &QueuedHandler{queue: h.queue, sink: h.sink.WithGroup(name)}
}

// Dropped is the number of records lost to a full queue.
func (h *QueuedHandler) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return h.queue.dropped.Load()
}

// Shutdown stops accepting records and waits for queued ones to ship.
// Without a deadline on ctx the drain is bounded by QueueOptions.DrainTimeout.
func (h *QueuedHandler) Shutdown(ctx context.Context) error {
	if h == nil {
		return nil
	}
	return h.queue.drain(ctx)
}
