package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// TimelineRepository stores the organization activity feed
type TimelineRepository interface {
	Create(ctx context.Context, entry *governance.TimelineEntry) error

	// List returns entries matching the filter, newest first
	List(ctx context.Context, filter governance.TimelineFilter) ([]governance.TimelineEntry, error)
}
