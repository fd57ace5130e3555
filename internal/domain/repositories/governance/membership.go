package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// MembershipRepository resolves which organizations a user belongs to
type MembershipRepository interface {
	// IsMember reports whether userID belongs to orgID
	IsMember(ctx context.Context, orgID, userID string) (bool, error)

	// Upsert adds a member or updates their role
	Upsert(ctx context.Context, member *governance.Member) error
}
