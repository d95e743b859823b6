package audit

import (
	"context"
	"errors"
	"log/slog"

	"eanft/pkg/requestcontext"
)

// ErrQueueFull is returned by Emit when the async queue cannot accept more events.
var ErrQueueFull = errors.New("audit queue full")

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	queue  chan Event
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

// WithQueue makes Emit non-blocking. Events are buffered and persisted by a
// Worker reading from Queue().
func WithQueue(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event with the request time and request ID, then stores or
// enqueues it. A nil Publisher discards events.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Category == "" {
		event.Category = CategoryOperations
	}
	if p.queue != nil {
		select {
		case p.queue <- event:
			return nil
		default:
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit queue full, dropping event", "action", event.Action)
			}
			return ErrQueueFull
		}
	}
	return p.store.Append(ctx, event)
}

// Queue exposes the async inbox, nil when the publisher is synchronous.
func (p *Publisher) Queue() <-chan Event {
	return p.queue
}
