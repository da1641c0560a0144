// Package publisher emits simulation audit events to a store, either inline
// or through a bounded buffer drained by a background worker.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit/worker"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"

	"github.com/google/uuid"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

type Publisher struct {
	store   audit.Store
	sink    audit.Store
	logger  *slog.Logger
	breaker *breaker

	bufferSize int
	buffer     chan audit.Event
	done       chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	failed  atomic.Int64
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking: events are queued in a buffer of
// size n and persisted by a background worker. Emit fails with ErrBufferFull
// when the buffer is full.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithCircuitBreaker stops calling the store after threshold consecutive
// failures for cooldown.
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(p *Publisher) {
		p.breaker = newBreaker(threshold, cooldown)
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.sink = store
	if p.breaker != nil {
		p.sink = guardedStore{store: store, breaker: p.breaker}
	}
	if p.bufferSize > 0 {
		p.buffer = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(p.sink, p.buffer,
			worker.WithLogger(p.logger),
			worker.WithErrorHandler(func(audit.Event, error) { p.failed.Add(1) }),
		)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records event. Missing ID, timestamp and category are filled in.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.buffer == nil {
		if err := p.sink.Append(ctx, event); err != nil {
			p.failed.Add(1)
			return fmt.Errorf("append audit event: %w", err)
		}
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.dropped.Add(1)
		return ErrBufferFull
	}
}

// List returns the events recorded for a run when the store can be read.
func (p *Publisher) List(ctx context.Context, runID uuid.UUID) ([]audit.Event, error) {
	r, ok := p.store.(audit.Reader)
	if !ok {
		return nil, fmt.Errorf("audit store is write-only: %w", sentinel.ErrInvalidState)
	}
	return r.ListByRun(ctx, runID)
}

// Close stops accepting events and waits until the buffer is drained.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.buffer != nil {
		close(p.buffer)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}

// Dropped is the number of events rejected because the buffer was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Failed is the number of events the store rejected.
func (p *Publisher) Failed() int64 {
	return p.failed.Load()
}

// CircuitOpen reports whether the store is currently being skipped.
func (p *Publisher) CircuitOpen() bool {
	return p.breaker != nil && p.breaker.open()
}
