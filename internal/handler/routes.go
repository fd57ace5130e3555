package handler

import "net/http"

// Routes bundles the handlers mounted on the API mux
type Routes struct {
	Packs     *PackHandler
	Lifecycle *LifecycleHandler
	Exports   *ExportHandler
	Timeline  *TimelineHandler
	Health    *HealthHandler
	Metrics   http.Handler
}

// Register mounts every route on mux (Go 1.22+ enhanced patterns)
func (rt Routes) Register(mux *http.ServeMux) {
	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.HealthCheck)
	}
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Pack catalogue
	mux.HandleFunc("POST /api/packs", rt.Packs.CreatePack)
	mux.HandleFunc("GET /api/packs", rt.Packs.ListPacks)
	mux.HandleFunc("GET /api/packs/{id}", rt.Packs.GetPack)
	mux.HandleFunc("PATCH /api/packs/{id}", rt.Packs.UpdatePack)
	mux.HandleFunc("GET /api/packs/{id}/versions", rt.Packs.ListVersions)
	mux.HandleFunc("GET /api/packs/{id}/approvals", rt.Packs.ListApprovals)

	// Workflow
	mux.HandleFunc("POST /api/packs/{id}/submit", rt.Lifecycle.Submit)
	mux.HandleFunc("POST /api/packs/{id}/approve", rt.Lifecycle.Approve)
	mux.HandleFunc("POST /api/packs/{id}/request-changes", rt.Lifecycle.RequestChanges)
	mux.HandleFunc("POST /api/packs/{id}/versions/restore", rt.Lifecycle.RestoreVersion)

	// Export
	mux.HandleFunc("POST /api/packs/{id}/export", rt.Exports.RequestExport)
	mux.HandleFunc("GET /api/packs/{id}/exports", rt.Exports.ListExports)

	// Activity and templates
	mux.HandleFunc("GET /api/timeline", rt.Timeline.ListTimeline)
	mux.HandleFunc("GET /api/pack-templates", rt.Timeline.ListTemplates)
}
