package services

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// EventPublisher delivers pack lifecycle events to subscribers.
type EventPublisher interface {
	// Publish runs transactional subscribers with ctx. When ctx carries a
	// transaction their writes join it, and an error aborts the transition.
	Publish(ctx context.Context, event governance.Event) error

	// Announce runs best-effort observers after the transition has committed.
	// Observer failures are logged, never returned.
	Announce(ctx context.Context, event governance.Event)
}
