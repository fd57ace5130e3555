package handler

import (
	"log/slog"
	"net/http"

	govSvc "schoolgle/internal/domain/services/governance"
	"schoolgle/internal/httputil"
)

// LifecycleHandler handles pack workflow transitions
type LifecycleHandler struct {
	errorWriter
	lifecycle govSvc.LifecycleService
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(lifecycle govSvc.LifecycleService, logger *slog.Logger, debug bool) *LifecycleHandler {
	return &LifecycleHandler{
		errorWriter: errorWriter{logger: logger, debug: debug},
		lifecycle:   lifecycle,
	}
}

// decodeTransition parses a transition body and binds the path pack ID and actor.
// target must embed govSvc.TransitionRequest, reached through base.
func decodeTransition(w http.ResponseWriter, r *http.Request, target any, base *govSvc.TransitionRequest) bool {
	packID, ok := PathParam(w, r, "id", "Pack ID")
	if !ok {
		return false
	}
	if err := httputil.ParseJSON(w, r, target); err != nil {
		badRequest(w, "Invalid request body")
		return false
	}
	base.PackID = packID
	return bindActor(w, r, &base.UserID)
}

// Submit snapshots the pack and sends it for approval
// POST /api/packs/{id}/submit
func (h *LifecycleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req govSvc.TransitionRequest
	if !decodeTransition(w, r, &req, &req) {
		return
	}

	result, err := h.lifecycle.Submit(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Approve approves the pack's current version
// POST /api/packs/{id}/approve
func (h *LifecycleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req govSvc.ApproveRequest
	if !decodeTransition(w, r, &req, &req.TransitionRequest) {
		return
	}

	status, err := h.lifecycle.Approve(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"status": status})
}

// RequestChanges returns the pack to its author with comments
// POST /api/packs/{id}/request-changes
func (h *LifecycleHandler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	var req govSvc.RequestChangesRequest
	if !decodeTransition(w, r, &req, &req.TransitionRequest) {
		return
	}

	status, err := h.lifecycle.RequestChanges(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"status": status})
}

// RestoreVersion reverts the pack to a snapshot and returns the updated pack
// POST /api/packs/{id}/versions/restore
func (h *LifecycleHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	var req govSvc.RestoreVersionRequest
	if !decodeTransition(w, r, &req, &req.TransitionRequest) {
		return
	}

	pack, err := h.lifecycle.RestoreVersion(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, pack)
}
