package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// VersionRepository defines data access operations for pack version snapshots.
// Versions are append-only.
type VersionRepository interface {
	// Create inserts a snapshot. A duplicate (pack, version_number) returns
	// a *domain.VersionConflictError.
	Create(ctx context.Context, version *governance.Version) error

	// GetByNumber retrieves one snapshot of a pack
	GetByNumber(ctx context.Context, packID, orgID string, versionNumber int) (*governance.Version, error)

	// ListByPack retrieves all snapshots of a pack, newest first
	ListByPack(ctx context.Context, packID, orgID string) ([]governance.Version, error)
}
