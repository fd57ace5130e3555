package services

import "context"

// TenantAuthorizer checks if a user can act within an organization.
// Current implementation: membership-based (user is listed in organization_members).
//
// Services call the authorizer before touching tenant data, so a pack ID
// guessed from another organization is never read or written.
type TenantAuthorizer interface {
	// CanAccessOrganization returns domain.ErrForbidden if the user is not a member
	CanAccessOrganization(ctx context.Context, userID, orgID string) error
}
