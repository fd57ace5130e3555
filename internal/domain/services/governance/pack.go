package governance

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// CreatePackRequest represents a request to create a pack from a template
type CreatePackRequest struct {
	OrganizationID string               `json:"organizationId"`
	UserID         string               `json:"userId"`
	TemplateID     string               `json:"templateId"`
	Title          string               `json:"title"`
	Sections       []governance.Section `json:"sections,omitempty"`
}

// UpdateSectionsRequest saves the latest working content of a pack
type UpdateSectionsRequest struct {
	PackID         string               `json:"packId"`
	OrganizationID string               `json:"organizationId"`
	UserID         string               `json:"userId"`
	Title          *string              `json:"title,omitempty"`
	Sections       []governance.Section `json:"sections"`
}

// PackService defines catalogue operations for packs and their history
type PackService interface {
	// CreatePack creates a draft pack
	CreatePack(ctx context.Context, req *CreatePackRequest) (*governance.Pack, error)

	// GetPack retrieves a pack
	GetPack(ctx context.Context, packID, orgID, userID string) (*governance.Pack, error)

	// ListPacks retrieves packs for an organization, optionally filtered by status
	ListPacks(ctx context.Context, orgID, userID string, status *governance.Status) ([]governance.Pack, error)

	// UpdateSections saves working content. Only draft and changes_requested packs are editable.
	UpdateSections(ctx context.Context, req *UpdateSectionsRequest) (*governance.Pack, error)

	// ListVersions returns snapshots, newest first
	ListVersions(ctx context.Context, packID, orgID, userID string) ([]governance.Version, error)

	// ListApprovals returns approval history, newest first
	ListApprovals(ctx context.Context, packID, orgID, userID string) ([]governance.Approval, error)
}
