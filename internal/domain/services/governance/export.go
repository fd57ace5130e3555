package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// ExportRequest asks for a pack to be exported in the given format
type ExportRequest struct {
	TransitionRequest
	Format string `json:"format"`
}

// ExportResult tells the client what to do next. Rendering happens client-side.
type ExportResult struct {
	ExportID   string `json:"exportId"`
	Message    string `json:"message"`
	NextAction string `json:"nextAction"`
}

// ExportService records export requests
type ExportService interface {
	// RequestExport records an export of the pack's current version. Pack status is unchanged.
	RequestExport(ctx context.Context, req *ExportRequest) (*ExportResult, error)

	// ListExports returns export history for a pack, newest first
	ListExports(ctx context.Context, packID, orgID, userID string) ([]governance.ExportRecord, error)
}
