package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// TransitionRequest identifies the pack and actor of a lifecycle transition
type TransitionRequest struct {
	PackID         string `json:"packId"`
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
}

// ApproveRequest records a governor's approval
type ApproveRequest struct {
	TransitionRequest
	Comments *string `json:"comments,omitempty"`
}

// RequestChangesRequest sends a pack back to its author with feedback
type RequestChangesRequest struct {
	TransitionRequest
	Comments        *string                     `json:"comments,omitempty"`
	SectionComments []governance.SectionComment `json:"section_comments,omitempty"`
}

// RestoreVersionRequest copies a historical snapshot back onto the pack
type RestoreVersionRequest struct {
	TransitionRequest
	VersionNumber int `json:"versionNumber"`
}

// SubmitResult is returned by Submit
type SubmitResult struct {
	Status  governance.Status `json:"status"`
	Version int               `json:"version"`
}

// LifecycleService moves packs through draft, submitted, changes_requested and approved.
// Each transition is atomic: pack update, snapshot, approval row and timeline entry
// commit together or not at all.
type LifecycleService interface {
	// Submit snapshots the pack and sends it for approval
	Submit(ctx context.Context, req *TransitionRequest) (*SubmitResult, error)

	// Approve marks the pack approved against its current version
	Approve(ctx context.Context, req *ApproveRequest) (governance.Status, error)

	// RequestChanges returns the pack to its author
	RequestChanges(ctx context.Context, req *RequestChangesRequest) (governance.Status, error)

	// RestoreVersion reverts the working sections to a snapshot and records a new version
	RestoreVersion(ctx context.Context, req *RestoreVersionRequest) (*governance.Pack, error)
}
