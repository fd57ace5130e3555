package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// ExportRepository stores export request metadata
type ExportRepository interface {
	Create(ctx context.Context, record *governance.ExportRecord) error

	// ListByPack returns export records for a pack, newest first
	ListByPack(ctx context.Context, packID, orgID string) ([]governance.ExportRecord, error)
}
