package auth

import (
	"context"
	"fmt"

	"schoolgle/internal/domain"
	govRepo "schoolgle/internal/domain/repositories/governance"
)

// MembershipAuthorizer implements TenantAuthorizer using organization membership.
// A user can act in an organization if they have a row in organization_members.
//
// For future extensibility:
// - RoleBasedAuthorizer: only governors/chairs may approve
// - TrustAuthorizer: multi-academy trust staff see every school in the trust
type MembershipAuthorizer struct {
	members govRepo.MembershipRepository
}

// NewMembershipAuthorizer creates a new membership-based authorizer
func NewMembershipAuthorizer(members govRepo.MembershipRepository) *MembershipAuthorizer {
	return &MembershipAuthorizer{members: members}
}

// CanAccessOrganization checks if user is a member of the organization
func (a *MembershipAuthorizer) CanAccessOrganization(ctx context.Context, userID, orgID string) error {
	ok, err := a.members.IsMember(ctx, orgID, userID)
	if err != nil {
		return fmt.Errorf("check organization access: %w", err)
	}
	if !ok {
		return fmt.Errorf("access denied to organization %s: %w", orgID, domain.ErrForbidden)
	}
	return nil
}
