package worker

import (
	"context"

	audit "impactledger/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Append
// failures go to onError and do not stop the loop; the worker returns when
// the inbox is closed and drained, or when ctx is cancelled.
type Worker struct {
	store   audit.Store
	inbox   <-chan audit.Event
	onError func(audit.Event, error)
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, onError func(audit.Event, error)) *Worker {
	if onError == nil {
		onError = func(audit.Event, error) {}
	}
	return &Worker{store: store, inbox: inbox, onError: onError}
}

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
				w.onError(event, err)
			}
		}
	}
}
