package audit

import (
	"context"
	"log/slog"

	"schoolgle/internal/domain/models/governance"
)

// Notifier tells interested governors about pack transitions.
// Delivery (email, in-app) is not wired yet; requests are logged so the
// call sites and payloads are in place.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a logging notifier
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// notifiable lists the events that reach people rather than just the audit feed
var notifiable = map[governance.EventType]string{
	governance.EventPackSubmitted:        "approvers",
	governance.EventPackApproved:         "author",
	governance.EventPackChangesRequested: "author",
}

// HandleEvent queues a notification for events that need one
func (n *Notifier) HandleEvent(ctx context.Context, event governance.Event) error {
	audience, ok := notifiable[event.Type]
	if !ok {
		return nil
	}

	n.logger.InfoContext(ctx, "notification queued",
		"event", event.Type,
		"audience", audience,
		"organization_id", event.OrganizationID,
		"pack_id", event.PackID,
		"version", event.VersionNumber,
		"actor_id", event.ActorID,
	)
	return nil
}
