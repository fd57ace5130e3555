package governance

import (
	"context"
	"fmt"

	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"
)

const (
	summarySubmitted    = "Submitted for approval"
	summaryRestoredFrom = "Restored from version %d"
)

// LifecycleOptions holds policy switches for the lifecycle manager
type LifecycleOptions struct {
	// AllowReapproval lets Approve run on an already approved pack
	AllowReapproval bool
}

// lifecycleService implements the LifecycleService interface
type lifecycleService struct {
	deps Dependencies
	opts LifecycleOptions
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(deps Dependencies, opts LifecycleOptions) govSvc.LifecycleService {
	return &lifecycleService{deps: deps, opts: opts}
}

// Submit snapshots the working sections as the next version and marks the pack submitted
func (s *lifecycleService) Submit(ctx context.Context, req *govSvc.TransitionRequest) (*govSvc.SubmitResult, error) {
	if err := validateTransition(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, req.UserID, req.OrganizationID); err != nil {
		return nil, err
	}

	var result *govSvc.SubmitResult
	var event models.Event
	err := runTransition(ctx, s.deps, "submit", func(txCtx context.Context) error {
		pack, err := s.deps.Packs.GetByIDForUpdate(txCtx, req.PackID, req.OrganizationID)
		if err != nil {
			return err
		}
		if !pack.Status.CanSubmit() {
			return &domain.InvalidTransitionError{Action: "submit", From: string(pack.Status)}
		}

		version, err := s.deps.Packs.NextVersion(txCtx, pack.ID, pack.OrganizationID)
		if err != nil {
			return err
		}

		if err := s.deps.Packs.UpdateStatus(txCtx, pack.ID, pack.OrganizationID, models.StatusSubmitted); err != nil {
			return err
		}

		if err := s.deps.Versions.Create(txCtx, &models.Version{
			PackID:         pack.ID,
			OrganizationID: pack.OrganizationID,
			VersionNumber:  version,
			Sections:       models.CloneSections(pack.Sections),
			Trigger:        models.TriggerSubmit,
			CreatedBy:      req.UserID,
			ChangeSummary:  summarySubmitted,
		}); err != nil {
			return err
		}

		if err := s.deps.Approvals.Create(txCtx, &models.Approval{
			PackID:         pack.ID,
			OrganizationID: pack.OrganizationID,
			VersionNumber:  version,
			Action:         models.ActionSubmitted,
			ActorID:        req.UserID,
		}); err != nil {
			return err
		}

		event = s.event(models.EventPackSubmitted, pack, req.UserID)
		event.Status = models.StatusSubmitted
		event.VersionNumber = version
		event.EvidenceIDs = models.EvidenceIDs(pack.Sections)
		if err := s.deps.Publisher.Publish(txCtx, event); err != nil {
			return err
		}

		result = &govSvc.SubmitResult{Status: models.StatusSubmitted, Version: version}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Publisher.Announce(ctx, event)
	s.deps.Logger.Info("pack submitted",
		"pack_id", req.PackID,
		"organization_id", req.OrganizationID,
		"version", result.Version,
		"user_id", req.UserID,
	)

	return result, nil
}

// Approve marks the pack approved against its stored current version
func (s *lifecycleService) Approve(ctx context.Context, req *govSvc.ApproveRequest) (models.Status, error) {
	if err := validateTransition(&req.TransitionRequest); err != nil {
		return "", validationError(err)
	}
	if err := validateComments(req.Comments); err != nil {
		return "", validationError(fieldError("comments", err))
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, req.UserID, req.OrganizationID); err != nil {
		return "", err
	}

	var event models.Event
	err := runTransition(ctx, s.deps, "approve", func(txCtx context.Context) error {
		pack, err := s.deps.Packs.GetByIDForUpdate(txCtx, req.PackID, req.OrganizationID)
		if err != nil {
			return err
		}
		if pack.Status == models.StatusApproved && !s.opts.AllowReapproval {
			return &domain.InvalidTransitionError{Action: "approve", From: string(pack.Status)}
		}

		if err := s.deps.Packs.UpdateStatus(txCtx, pack.ID, pack.OrganizationID, models.StatusApproved); err != nil {
			return err
		}

		if err := s.deps.Approvals.Create(txCtx, &models.Approval{
			PackID:         pack.ID,
			OrganizationID: pack.OrganizationID,
			VersionNumber:  pack.CurrentVersion,
			Action:         models.ActionApproved,
			ActorID:        req.UserID,
			Comments:       req.Comments,
		}); err != nil {
			return err
		}

		event = s.event(models.EventPackApproved, pack, req.UserID)
		event.Status = models.StatusApproved
		event.VersionNumber = pack.CurrentVersion
		event.Comments = req.Comments
		return s.deps.Publisher.Publish(txCtx, event)
	})
	if err != nil {
		return "", err
	}

	s.deps.Publisher.Announce(ctx, event)
	s.deps.Logger.Info("pack approved",
		"pack_id", req.PackID,
		"organization_id", req.OrganizationID,
		"version", event.VersionNumber,
		"user_id", req.UserID,
	)

	return models.StatusApproved, nil
}

// RequestChanges sends the pack back to its author with optional per-section feedback
func (s *lifecycleService) RequestChanges(ctx context.Context, req *govSvc.RequestChangesRequest) (models.Status, error) {
	if err := validateTransition(&req.TransitionRequest); err != nil {
		return "", validationError(err)
	}
	if err := validateComments(req.Comments); err != nil {
		return "", validationError(fieldError("comments", err))
	}
	if err := validateSectionComments(req.SectionComments); err != nil {
		return "", validationError(fieldError("section_comments", err))
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, req.UserID, req.OrganizationID); err != nil {
		return "", err
	}

	var event models.Event
	err := runTransition(ctx, s.deps, "request_changes", func(txCtx context.Context) error {
		pack, err := s.deps.Packs.GetByIDForUpdate(txCtx, req.PackID, req.OrganizationID)
		if err != nil {
			return err
		}

		if err := s.deps.Packs.UpdateStatus(txCtx, pack.ID, pack.OrganizationID, models.StatusChangesRequested); err != nil {
			return err
		}

		if err := s.deps.Approvals.Create(txCtx, &models.Approval{
			PackID:          pack.ID,
			OrganizationID:  pack.OrganizationID,
			VersionNumber:   pack.CurrentVersion,
			Action:          models.ActionChangesRequested,
			ActorID:         req.UserID,
			Comments:        req.Comments,
			SectionComments: req.SectionComments,
		}); err != nil {
			return err
		}

		event = s.event(models.EventPackChangesRequested, pack, req.UserID)
		event.Status = models.StatusChangesRequested
		event.VersionNumber = pack.CurrentVersion
		event.Comments = req.Comments
		event.SectionCount = len(req.SectionComments)
		return s.deps.Publisher.Publish(txCtx, event)
	})
	if err != nil {
		return "", err
	}

	s.deps.Publisher.Announce(ctx, event)
	s.deps.Logger.Info("pack changes requested",
		"pack_id", req.PackID,
		"organization_id", req.OrganizationID,
		"section_comments", len(req.SectionComments),
		"user_id", req.UserID,
	)

	return models.StatusChangesRequested, nil
}

// RestoreVersion copies a snapshot back onto the pack, returns it to draft and
// records the result as a new version.
func (s *lifecycleService) RestoreVersion(ctx context.Context, req *govSvc.RestoreVersionRequest) (*models.Pack, error) {
	if err := validateTransition(&req.TransitionRequest); err != nil {
		return nil, validationError(err)
	}
	if req.VersionNumber < 1 {
		return nil, validationError(fieldError("versionNumber", fmt.Errorf("must be at least 1")))
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, req.UserID, req.OrganizationID); err != nil {
		return nil, err
	}

	var restored *models.Pack
	var event models.Event
	err := runTransition(ctx, s.deps, "restore", func(txCtx context.Context) error {
		pack, err := s.deps.Packs.GetByIDForUpdate(txCtx, req.PackID, req.OrganizationID)
		if err != nil {
			return err
		}

		snapshot, err := s.deps.Versions.GetByNumber(txCtx, pack.ID, pack.OrganizationID, req.VersionNumber)
		if err != nil {
			return err
		}

		version, err := s.deps.Packs.NextVersion(txCtx, pack.ID, pack.OrganizationID)
		if err != nil {
			return err
		}

		pack.Sections = models.CloneSections(snapshot.Sections)
		pack.Status = models.StatusDraft
		pack.CurrentVersion = version
		if err := s.deps.Packs.ReplaceSections(txCtx, pack); err != nil {
			return err
		}

		if err := s.deps.Versions.Create(txCtx, &models.Version{
			PackID:         pack.ID,
			OrganizationID: pack.OrganizationID,
			VersionNumber:  version,
			Sections:       models.CloneSections(snapshot.Sections),
			Trigger:        models.TriggerRestore,
			CreatedBy:      req.UserID,
			ChangeSummary:  fmt.Sprintf(summaryRestoredFrom, req.VersionNumber),
		}); err != nil {
			return err
		}

		event = s.event(models.EventPackVersionRestored, pack, req.UserID)
		event.Status = models.StatusDraft
		event.VersionNumber = version
		event.RestoredFrom = req.VersionNumber
		event.EvidenceIDs = models.EvidenceIDs(pack.Sections)
		if err := s.deps.Publisher.Publish(txCtx, event); err != nil {
			return err
		}

		restored = pack
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Publisher.Announce(ctx, event)
	s.deps.Logger.Info("pack version restored",
		"pack_id", req.PackID,
		"organization_id", req.OrganizationID,
		"restored_from", req.VersionNumber,
		"version", restored.CurrentVersion,
		"user_id", req.UserID,
	)

	return restored, nil
}

func (s *lifecycleService) event(eventType models.EventType, pack *models.Pack, actorID string) models.Event {
	return models.Event{
		Type:           eventType,
		OrganizationID: pack.OrganizationID,
		PackID:         pack.ID,
		PackTitle:      pack.Title,
		TemplateID:     pack.TemplateID,
		ActorID:        actorID,
		OccurredAt:     s.deps.now(),
	}
}
