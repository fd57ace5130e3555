package handler

import (
	"log/slog"
	"net/http"

	govSvc "schoolgle/internal/domain/services/governance"
	"schoolgle/internal/httputil"
)

// TimelineHandler serves the organization activity feed and the template catalogue
type TimelineHandler struct {
	errorWriter
	timeline  govSvc.TimelineService
	templates govSvc.TemplateCatalog
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(timeline govSvc.TimelineService, templates govSvc.TemplateCatalog, logger *slog.Logger, debug bool) *TimelineHandler {
	return &TimelineHandler{
		errorWriter: errorWriter{logger: logger, debug: debug},
		timeline:    timeline,
		templates:   templates,
	}
}

// ListTimeline returns recent activity for an organization
// GET /api/timeline?organizationId=&sourceType=&sourceId=&limit=
func (h *TimelineHandler) ListTimeline(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	entries, err := h.timeline.ListTimeline(r.Context(), &govSvc.TimelineQuery{
		OrganizationID: query.Get("organizationId"),
		UserID:         queryActor(r),
		SourceType:     query.Get("sourceType"),
		SourceID:       query.Get("sourceId"),
		Limit:          limit,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ListTemplates returns the pack templates
// GET /api/pack-templates
func (h *TimelineHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"templates": h.templates.List()})
}
