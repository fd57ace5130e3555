package governance

import (
	"context"
	"fmt"
	"strings"

	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"
)

// exportService implements the ExportService interface
type exportService struct {
	deps Dependencies
}

// NewExportService creates a new export service
func NewExportService(deps Dependencies) govSvc.ExportService {
	return &exportService{deps: deps}
}

// RequestExport records an export of the pack's current version. The document
// itself is rendered by the browser, so only metadata is stored here.
func (s *exportService) RequestExport(ctx context.Context, req *govSvc.ExportRequest) (*govSvc.ExportResult, error) {
	if err := validateTransition(&req.TransitionRequest); err != nil {
		return nil, validationError(err)
	}

	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(req.Format)))
	if !format.Valid() {
		supported := make([]string, len(models.SupportedFormats))
		for i, f := range models.SupportedFormats {
			supported[i] = string(f)
		}
		return nil, &domain.InvalidFormatError{Format: req.Format, Supported: supported}
	}

	if err := s.deps.Authorizer.CanAccessOrganization(ctx, req.UserID, req.OrganizationID); err != nil {
		return nil, err
	}

	var record *models.ExportRecord
	var event models.Event
	err := s.deps.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		pack, err := s.deps.Packs.GetByIDForUpdate(txCtx, req.PackID, req.OrganizationID)
		if err != nil {
			return err
		}

		record = &models.ExportRecord{
			PackID:         pack.ID,
			OrganizationID: pack.OrganizationID,
			VersionNumber:  pack.CurrentVersion,
			Format:         format,
			FileURL:        models.PlaceholderFileURL(pack.ID, pack.CurrentVersion, format),
			RequestedBy:    req.UserID,
		}
		if err := s.deps.Exports.Create(txCtx, record); err != nil {
			return err
		}

		event = models.Event{
			Type:           models.EventPackExportRequested,
			OrganizationID: pack.OrganizationID,
			PackID:         pack.ID,
			PackTitle:      pack.Title,
			TemplateID:     pack.TemplateID,
			Category:       s.templateCategory(pack.TemplateID),
			ActorID:        req.UserID,
			Status:         pack.Status,
			VersionNumber:  pack.CurrentVersion,
			ExportID:       record.ID,
			Format:         format,
			EvidenceIDs:    models.EvidenceIDs(pack.Sections),
			OccurredAt:     s.deps.now(),
		}
		return s.deps.Publisher.Publish(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Publisher.Announce(ctx, event)
	s.deps.Logger.Info("pack export requested",
		"pack_id", req.PackID,
		"organization_id", req.OrganizationID,
		"export_id", record.ID,
		"format", format,
		"version", record.VersionNumber,
	)

	return &govSvc.ExportResult{
		ExportID:   record.ID,
		Message:    fmt.Sprintf("%s export of version %d recorded", strings.ToUpper(string(format)), record.VersionNumber),
		NextAction: models.NextActionBrowserPrint,
	}, nil
}

// ListExports returns export history for a pack, newest first
func (s *exportService) ListExports(ctx context.Context, packID, orgID, userID string) ([]models.ExportRecord, error) {
	if err := validatePackScope(packID, orgID, userID); err != nil {
		return nil, validationError(err)
	}
	if err := s.deps.Authorizer.CanAccessOrganization(ctx, userID, orgID); err != nil {
		return nil, err
	}
	if _, err := s.deps.Packs.GetByID(ctx, packID, orgID); err != nil {
		return nil, err
	}

	return s.deps.Exports.ListByPack(ctx, packID, orgID)
}

// templateCategory falls back to the governance category for templates
// removed from the catalogue after packs were created from them
func (s *exportService) templateCategory(templateID string) string {
	if s.deps.Templates != nil {
		if t, ok := s.deps.Templates.Get(templateID); ok && t.Category != "" {
			return t.Category
		}
	}
	return "governance"
}
