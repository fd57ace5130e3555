package governance

import (
	"context"
	"fmt"
	"strings"

	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// packService implements the PackService interface
type packService struct {
	deps Dependencies
}

// NewPackService creates a new pack service
func NewPackService(deps Dependencies) govSvc.PackService {
	return &packService{deps: deps}
}

// CreatePack creates a draft pack, seeding sections from the template when none are given
func (s *packService) CreatePack(ctx context.Context, req *govSvc.CreatePackRequest) (*models.Pack, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, validationError(err)
	}

	template, ok := s.deps.Templates.Get(req.TemplateID)
	if !ok {
		return nil, validationError(fieldError("templateId", fmt.Errorf("unknown template %q", req.TemplateID)))
	}

	if err := s.deps.Authorizer.CanAccessOrganization(ctx, req.UserID, req.OrganizationID); err != nil {
		return nil, err
	}

	sections := template.NewSections()
	if len(req.Sections) > 0 {
		sections = normalizeSections(req.Sections)
	}

	now := s.deps.now()
	pack := &models.Pack{
		OrganizationID: req.OrganizationID,
		TemplateID:     template.ID,
		Title:          strings.TrimSpace(req.Title),
		Status:         models.StatusDraft,
		Sections:       sections,
		CurrentVersion: 0,
		CreatedBy:      req.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var event models.Event
	err := s.deps.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.deps.Packs.Create(txCtx, pack); err != nil {
			return err
		}

		event = models.Event{
			Type:           models.EventPackCreated,
			OrganizationID: pack.OrganizationID,
			PackID:         pack.ID,
			PackTitle:      pack.Title,
			TemplateID:     pack.TemplateID,
			Category:       template.Category,
			ActorID:        req.UserID,
			Status:         pack.Status,
			OccurredAt:     now,
		}
		return s.deps.Publisher.Publish(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Publisher.Announce(ctx, event)
	s.deps.Logger.Info("pack created",
		"pack_id", pack.ID,
		"organization_id", pack.OrganizationID,
		"template_id", pack.TemplateID,
		"user_id", req.UserID,
	)

	return pack, nil
}

// GetPack retrieves a pack
func (s *packService) GetPack(ctx context.Context, packID, orgID, userID string) (*models.Pack, error) {
	if err := validatePackScope(packID, orgID, userID); err != nil {
		return nil, validationError(err)
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, userID, orgID); err != nil {
		return nil, err
	}

	return s.deps.Packs.GetByID(ctx, packID, orgID)
}

// ListPacks retrieves packs for an organization, most recently updated first
func (s *packService) ListPacks(ctx context.Context, orgID, userID string, status *models.Status) ([]models.Pack, error) {
	if err := validateScope(orgID, userID); err != nil {
		return nil, validationError(err)
	}
	if status != nil && !status.Valid() {
		return nil, validationError(fieldError("status", fmt.Errorf("unknown status %q", *status)))
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, userID, orgID); err != nil {
		return nil, err
	}

	return s.deps.Packs.List(ctx, orgID, status)
}

// UpdateSections saves working content. No version is written; versions are
// only cut on submit and restore.
func (s *packService) UpdateSections(ctx context.Context, req *govSvc.UpdateSectionsRequest) (*models.Pack, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, req.UserID, req.OrganizationID); err != nil {
		return nil, err
	}

	var updated *models.Pack
	err := s.deps.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		pack, err := s.deps.Packs.GetByIDForUpdate(txCtx, req.PackID, req.OrganizationID)
		if err != nil {
			return err
		}
		if !pack.Status.CanEdit() {
			return &domain.InvalidTransitionError{Action: "edit", From: string(pack.Status)}
		}

		pack.Sections = normalizeSections(req.Sections)
		if req.Title != nil {
			pack.Title = strings.TrimSpace(*req.Title)
		}
		if err := s.deps.Packs.UpdateContent(txCtx, pack); err != nil {
			return err
		}

		updated = pack
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("pack sections saved",
		"pack_id", updated.ID,
		"organization_id", updated.OrganizationID,
		"sections", len(updated.Sections),
		"user_id", req.UserID,
	)

	return updated, nil
}

// ListVersions returns snapshots, newest first. An unknown pack is NotFound
// rather than an empty list.
func (s *packService) ListVersions(ctx context.Context, packID, orgID, userID string) ([]models.Version, error) {
	if err := validatePackScope(packID, orgID, userID); err != nil {
		return nil, validationError(err)
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, userID, orgID); err != nil {
		return nil, err
	}
	if _, err := s.deps.Packs.GetByID(ctx, packID, orgID); err != nil {
		return nil, err
	}

	return s.deps.Versions.ListByPack(ctx, packID, orgID)
}

// ListApprovals returns approval history, newest first
func (s *packService) ListApprovals(ctx context.Context, packID, orgID, userID string) ([]models.Approval, error) {
	if err := validatePackScope(packID, orgID, userID); err != nil {
		return nil, validationError(err)
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, userID, orgID); err != nil {
		return nil, err
	}
	if _, err := s.deps.Packs.GetByID(ctx, packID, orgID); err != nil {
		return nil, err
	}

	return s.deps.Approvals.ListByPack(ctx, packID, orgID)
}

// validateCreateRequest validates a create pack request
func (s *packService) validateCreateRequest(req *govSvc.CreatePackRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required, is.UUID),
		validation.Field(&req.UserID, validation.Required, is.UUID),
		validation.Field(&req.TemplateID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.By(validateTitle)),
		validation.Field(&req.Sections, validation.By(func(interface{}) error {
			return validateSections(req.Sections)
		})),
	)
}

// validateUpdateRequest validates an update sections request
func (s *packService) validateUpdateRequest(req *govSvc.UpdateSectionsRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PackID, validation.Required, is.UUID),
		validation.Field(&req.OrganizationID, validation.Required, is.UUID),
		validation.Field(&req.UserID, validation.Required, is.UUID),
		validation.Field(&req.Title, validation.By(validateTitle)),
		validation.Field(&req.Sections, validation.Required, validation.By(func(interface{}) error {
			return validateSections(req.Sections)
		})),
	)
}
