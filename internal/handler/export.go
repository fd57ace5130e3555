package handler

import (
	"log/slog"
	"net/http"

	govSvc "schoolgle/internal/domain/services/governance"
	"schoolgle/internal/httputil"
)

// ExportHandler records pack export requests
type ExportHandler struct {
	errorWriter
	exports govSvc.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exports govSvc.ExportService, logger *slog.Logger, debug bool) *ExportHandler {
	return &ExportHandler{
		errorWriter: errorWriter{logger: logger, debug: debug},
		exports:     exports,
	}
}

// RequestExport records an export of the pack's current version.
// The document itself is rendered by the browser.
// POST /api/packs/{id}/export
func (h *ExportHandler) RequestExport(w http.ResponseWriter, r *http.Request) {
	var req govSvc.ExportRequest
	if !decodeTransition(w, r, &req, &req.TransitionRequest) {
		return
	}

	result, err := h.exports.RequestExport(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListExports returns export history for a pack
// GET /api/packs/{id}/exports?organizationId=
func (h *ExportHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	packID, ok := PathParam(w, r, "id", "Pack ID")
	if !ok {
		return
	}

	exports, err := h.exports.ListExports(r.Context(), packID, r.URL.Query().Get("organizationId"), queryActor(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"exports": exports})
}
