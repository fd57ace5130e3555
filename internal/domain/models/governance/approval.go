package governance

import "time"

// ApprovalAction is the decision recorded by an approval row
type ApprovalAction string

const (
	ActionSubmitted        ApprovalAction = "submitted"
	ActionApproved         ApprovalAction = "approved"
	ActionChangesRequested ApprovalAction = "changes_requested"
)

// Approval is an append-only audit record of a review decision
type Approval struct {
	ID              string           `json:"id" db:"id"`
	PackID          string           `json:"packId" db:"pack_id"`
	OrganizationID  string           `json:"organizationId" db:"organization_id"`
	VersionNumber   int              `json:"versionNumber" db:"version_number"`
	Action          ApprovalAction   `json:"action" db:"action"`
	ActorID         string           `json:"actorId" db:"actor_id"`
	Comments        *string          `json:"comments,omitempty" db:"comments"`
	SectionComments []SectionComment `json:"section_comments,omitempty" db:"section_comments"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
}

// SectionComment is reviewer feedback attached to one section
type SectionComment struct {
	SectionID string `json:"section_id"`
	Comment   string `json:"comment"`
}
