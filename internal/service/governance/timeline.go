package governance

import (
	"context"

	"schoolgle/internal/config"
	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"
)

// timelineService implements the TimelineService interface
type timelineService struct {
	deps Dependencies
}

// NewTimelineService creates a new timeline service
func NewTimelineService(deps Dependencies) govSvc.TimelineService {
	return &timelineService{deps: deps}
}

// ListTimeline returns the organization's activity feed, newest first
func (s *timelineService) ListTimeline(ctx context.Context, query *govSvc.TimelineQuery) ([]models.TimelineEntry, error) {
	if err := validateScope(query.OrganizationID, query.UserID); err != nil {
		return nil, validationError(err)
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, query.UserID, query.OrganizationID); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = config.DefaultTimelineLimit
	}
	if limit > config.MaxTimelineLimit {
		limit = config.MaxTimelineLimit
	}

	return s.deps.Timeline.List(ctx, models.TimelineFilter{
		OrganizationID: query.OrganizationID,
		SourceType:     query.SourceType,
		SourceID:       query.SourceID,
		Limit:          limit,
	})
}
