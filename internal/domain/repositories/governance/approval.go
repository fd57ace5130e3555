package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// ApprovalRepository stores the append-only review history of packs
type ApprovalRepository interface {
	Create(ctx context.Context, approval *governance.Approval) error

	// ListByPack returns approval records for a pack, newest first
	ListByPack(ctx context.Context, packID, orgID string) ([]governance.Approval, error)
}
