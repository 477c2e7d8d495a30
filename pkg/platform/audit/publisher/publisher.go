// Package publisher emits audit events either synchronously or through a
// bounded buffer drained by a background worker.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "impactledger/pkg/platform/audit"
	"impactledger/pkg/platform/audit/worker"
)

// ErrBufferFull is returned by Emit in async mode when the buffer is full.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit once Close has been called.
var ErrClosed = errors.New("audit publisher closed")

// Publisher fans audit events out to a Store.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	onError func(audit.Event, error)

	bufferSize int
	events     chan audit.Event
	done       chan struct{}

	// mu guards closed and the send on events against Close.
	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with a buffer of size n.
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

// WithErrorHook is called for every event the background worker fails to persist.
func WithErrorHook(fn func(audit.Event, error)) Option {
	return func(p *Publisher) {
		p.onError = fn
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.events = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.events, p.handleAsyncError)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records event. Missing IDs and timestamps are filled in.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.events == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.events <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrBufferFull
}

// Close stops accepting events and waits for buffered events to be persisted.
// Emit calls made after Close return ErrClosed.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.events != nil {
		close(p.events)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}

func (p *Publisher) handleAsyncError(event audit.Event, err error) {
	if p.logger != nil {
		p.logger.Error("failed to persist audit event",
			"action", event.Action,
			"delegate_id", event.DelegateID,
			"error", err,
		)
	}
	if p.onError != nil {
		p.onError(event, err)
	}
}
