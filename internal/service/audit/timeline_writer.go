package audit

import (
	"context"
	"fmt"
	"log/slog"

	"schoolgle/internal/domain/models/governance"
	govRepo "schoolgle/internal/domain/repositories/governance"
)

const (
	// CategoryGovernance groups pack activity in the organization feed
	CategoryGovernance = "governance"
	// SubcategoryGovernorPacks is the feed subcategory for every pack entry
	SubcategoryGovernorPacks = "governor_packs"
)

// entryStyle is the UI presentation of a timeline entry type
type entryStyle struct {
	entryType string
	icon      string
	color     string
}

var entryStyles = map[governance.EventType]entryStyle{
	governance.EventPackCreated:          {entryType: "pack_created", icon: "file-plus", color: "slate"},
	governance.EventPackSubmitted:        {entryType: "pack_submitted", icon: "send", color: "blue"},
	governance.EventPackApproved:         {entryType: "pack_approved", icon: "check-circle", color: "green"},
	governance.EventPackChangesRequested: {entryType: "pack_changes_requested", icon: "message-square", color: "amber"},
	governance.EventPackVersionRestored:  {entryType: "pack_version_restored", icon: "history", color: "purple"},
	governance.EventPackExportRequested:  {entryType: "pack_exported", icon: "download", color: "indigo"},
}

// TimelineWriter turns pack events into organization timeline entries.
// It writes through the context's transaction, so a failed insert aborts the transition.
type TimelineWriter struct {
	repo   govRepo.TimelineRepository
	logger *slog.Logger
}

// NewTimelineWriter creates a timeline writer
func NewTimelineWriter(repo govRepo.TimelineRepository, logger *slog.Logger) *TimelineWriter {
	return &TimelineWriter{repo: repo, logger: logger}
}

// HandleEvent writes the timeline entry for event
func (w *TimelineWriter) HandleEvent(ctx context.Context, event governance.Event) error {
	entry, err := EntryForEvent(event)
	if err != nil {
		return err
	}

	if err := w.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("write timeline entry: %w", err)
	}

	w.logger.Debug("timeline entry written",
		"entry_type", entry.EntryType,
		"pack_id", event.PackID,
		"organization_id", event.OrganizationID,
	)
	return nil
}

// EntryForEvent maps a lifecycle event to its timeline entry
func EntryForEvent(event governance.Event) (*governance.TimelineEntry, error) {
	style, ok := entryStyles[event.Type]
	if !ok {
		return nil, fmt.Errorf("no timeline mapping for event %s", event.Type)
	}

	entry := &governance.TimelineEntry{
		OrganizationID: event.OrganizationID,
		UserID:         event.ActorID,
		EntryType:      style.entryType,
		SourceType:     governance.SourceTypePack,
		SourceID:       event.PackID,
		EvidenceIDs:    event.EvidenceIDs,
		Category:       CategoryGovernance,
		Subcategory:    SubcategoryGovernorPacks,
		Icon:           style.icon,
		Color:          style.color,
	}
	if entry.EvidenceIDs == nil {
		entry.EvidenceIDs = []string{}
	}

	title := event.PackTitle
	switch event.Type {
	case governance.EventPackCreated:
		entry.Title = fmt.Sprintf("Pack created: %s", title)
		entry.Description = fmt.Sprintf("Draft created from template %s", event.TemplateID)
	case governance.EventPackSubmitted:
		entry.Title = fmt.Sprintf("Pack submitted for approval: %s", title)
		entry.Description = fmt.Sprintf("Version %d submitted for governor approval", event.VersionNumber)
	case governance.EventPackApproved:
		entry.Title = fmt.Sprintf("Pack approved: %s", title)
		entry.Description = withComments(fmt.Sprintf("Version %d approved", event.VersionNumber), event.Comments)
	case governance.EventPackChangesRequested:
		entry.Title = fmt.Sprintf("Changes requested: %s", title)
		desc := "Reviewer requested changes"
		if event.SectionCount > 0 {
			desc = fmt.Sprintf("Reviewer requested changes to %d section(s)", event.SectionCount)
		}
		entry.Description = withComments(desc, event.Comments)
	case governance.EventPackVersionRestored:
		entry.Title = fmt.Sprintf("Pack restored: %s", title)
		entry.Description = fmt.Sprintf("Restored from version %d as version %d", event.RestoredFrom, event.VersionNumber)
	case governance.EventPackExportRequested:
		entry.Title = fmt.Sprintf("Pack exported: %s", title)
		entry.Description = fmt.Sprintf("Version %d exported as %s", event.VersionNumber, event.Format)
		// Exports are filed under the template's own category
		if event.Category != "" {
			entry.Category = event.Category
		}
	}

	return entry, nil
}

func withComments(desc string, comments *string) string {
	if comments == nil || *comments == "" {
		return desc
	}
	return desc + ": " + *comments
}
