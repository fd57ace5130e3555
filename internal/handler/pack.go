package handler

import (
	"log/slog"
	"net/http"

	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"
	"schoolgle/internal/httputil"
)

// PackHandler handles pack catalogue requests
type PackHandler struct {
	errorWriter
	packService govSvc.PackService
}

// NewPackHandler creates a new pack handler
func NewPackHandler(packService govSvc.PackService, logger *slog.Logger, debug bool) *PackHandler {
	return &PackHandler{
		errorWriter: errorWriter{logger: logger, debug: debug},
		packService: packService,
	}
}

// CreatePack creates a draft pack from a template
// POST /api/packs
func (h *PackHandler) CreatePack(w http.ResponseWriter, r *http.Request) {
	var req govSvc.CreatePackRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if !bindActor(w, r, &req.UserID) {
		return
	}

	pack, err := h.packService.CreatePack(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, pack)
}

// ListPacks lists an organization's packs, most recently updated first
// GET /api/packs?organizationId=&status=
func (h *PackHandler) ListPacks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var status *models.Status
	if raw := query.Get("status"); raw != "" {
		s := models.Status(raw)
		status = &s
	}

	packs, err := h.packService.ListPacks(r.Context(), query.Get("organizationId"), queryActor(r), status)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"packs": packs})
}

// GetPack retrieves a single pack
// GET /api/packs/{id}?organizationId=
func (h *PackHandler) GetPack(w http.ResponseWriter, r *http.Request) {
	packID, ok := PathParam(w, r, "id", "Pack ID")
	if !ok {
		return
	}

	pack, err := h.packService.GetPack(r.Context(), packID, r.URL.Query().Get("organizationId"), queryActor(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, pack)
}

// UpdatePack saves working sections and optionally the title
// PATCH /api/packs/{id}
func (h *PackHandler) UpdatePack(w http.ResponseWriter, r *http.Request) {
	packID, ok := PathParam(w, r, "id", "Pack ID")
	if !ok {
		return
	}

	var req govSvc.UpdateSectionsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	req.PackID = packID
	if !bindActor(w, r, &req.UserID) {
		return
	}

	pack, err := h.packService.UpdateSections(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, pack)
}

// ListVersions returns the pack's snapshots, newest first
// GET /api/packs/{id}/versions?organizationId=
func (h *PackHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	packID, ok := PathParam(w, r, "id", "Pack ID")
	if !ok {
		return
	}

	versions, err := h.packService.ListVersions(r.Context(), packID, r.URL.Query().Get("organizationId"), queryActor(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// ListApprovals returns the pack's approval history, newest first
// GET /api/packs/{id}/approvals?organizationId=
func (h *PackHandler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	packID, ok := PathParam(w, r, "id", "Pack ID")
	if !ok {
		return
	}

	approvals, err := h.packService.ListApprovals(r.Context(), packID, r.URL.Query().Get("organizationId"), queryActor(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"approvals": approvals})
}
