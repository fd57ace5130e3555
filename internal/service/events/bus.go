package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"schoolgle/internal/domain/models/governance"
	"schoolgle/internal/domain/services"
)

// HandlerFunc consumes an event. Transactional handlers return errors to abort
// the transition; observer errors are only logged.
type HandlerFunc func(ctx context.Context, event governance.Event) error

// Bus is a synchronous in-process event bus
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedHandler
	observers   []namedHandler
	logger      *slog.Logger
}

type namedHandler struct {
	name string
	fn   HandlerFunc
}

var _ services.EventPublisher = (*Bus)(nil)

// NewBus creates an empty bus
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers a transactional handler, run by Publish in registration order
func (b *Bus) Subscribe(name string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedHandler{name: name, fn: fn})
}

// Observe registers a best-effort handler, run by Announce after commit
func (b *Bus) Observe(name string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, namedHandler{name: name, fn: fn})
}

// Publish runs subscribers in order and stops at the first error
func (b *Bus) Publish(ctx context.Context, event governance.Event) error {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, h := range subs {
		if err := h.fn(ctx, event); err != nil {
			return fmt.Errorf("%s handling %s: %w", h.name, event.Type, err)
		}
	}
	return nil
}

// Announce runs every observer. Errors and panics are logged and swallowed.
func (b *Bus) Announce(ctx context.Context, event governance.Event) {
	b.mu.RLock()
	obs := b.observers
	b.mu.RUnlock()

	for _, h := range obs {
		b.runObserver(ctx, h, event)
	}
}

func (b *Bus) runObserver(ctx context.Context, h namedHandler, event governance.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event observer panicked",
				"observer", h.name,
				"event", event.Type,
				"panic", r,
			)
		}
	}()

	if err := h.fn(ctx, event); err != nil {
		b.logger.Warn("event observer failed",
			"observer", h.name,
			"event", event.Type,
			"pack_id", event.PackID,
			"error", err,
		)
	}
}
