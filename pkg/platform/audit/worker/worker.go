package worker

import (
	"context"
	"log/slog"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them until the
// channel is closed or the context ends.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger

	// OnError is called for every event the store rejects. Nil ignores failures.
	onError func(audit.Event, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithErrorHandler registers a callback for events the store rejects.
func WithErrorHandler(fn func(audit.Event, error)) Option {
	return func(w *Worker) {
		w.onError = fn
	}
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, opts ...Option) *Worker {
	w := &Worker{store: store, inbox: inbox}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run persists events in arrival order. A failed append is reported and
// skipped; Run returns nil once the inbox is closed and drained.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				if w.logger != nil {
					w.logger.WarnContext(ctx, "audit append failed",
						"action", event.Action,
						"run_id", event.RunID,
						"error", err,
					)
				}
				if w.onError != nil {
					w.onError(event, err)
				}
			}
		}
	}
}
