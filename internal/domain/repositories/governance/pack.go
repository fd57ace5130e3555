package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// PackRepository defines data access operations for governor packs.
// Every method is scoped by organization ID.
type PackRepository interface {
	// Create inserts a new pack and fills in generated ID and timestamps
	Create(ctx context.Context, pack *governance.Pack) error

	// GetByID retrieves a pack within an organization
	GetByID(ctx context.Context, id, orgID string) (*governance.Pack, error)

	// GetByIDForUpdate retrieves a pack and row-locks it until the surrounding
	// transaction ends. Every read-check-write on a pack starts here.
	GetByIDForUpdate(ctx context.Context, id, orgID string) (*governance.Pack, error)

	// List retrieves packs for an organization, ordered by updated_at DESC.
	// A nil status returns packs in every status.
	List(ctx context.Context, orgID string, status *governance.Status) ([]governance.Pack, error)

	// UpdateStatus sets status and updated_at
	UpdateStatus(ctx context.Context, id, orgID string, status governance.Status) error

	// UpdateContent persists title and sections while the stored status is
	// still editable. Status is never written. A pack that left draft or
	// changes_requested yields an InvalidTransitionError.
	UpdateContent(ctx context.Context, pack *governance.Pack) error

	// ReplaceSections persists sections and status, leaving the title alone
	ReplaceSections(ctx context.Context, pack *governance.Pack) error

	// NextVersion atomically increments the pack's version counter and returns the new value
	NextVersion(ctx context.Context, id, orgID string) (int, error)
}
