package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// TimelineQuery selects organization activity entries
type TimelineQuery struct {
	OrganizationID string
	UserID         string
	SourceType     string
	SourceID       string
	Limit          int
}

// TimelineService reads the organization activity feed
type TimelineService interface {
	ListTimeline(ctx context.Context, query *TimelineQuery) ([]governance.TimelineEntry, error)
}

// TemplateCatalog looks up pack templates
type TemplateCatalog interface {
	Get(id string) (*governance.Template, bool)
	List() []governance.Template
}
