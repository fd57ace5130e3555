package governance

import "time"

// EventType names a pack lifecycle event
type EventType string

const (
	EventPackCreated          EventType = "pack.created"
	EventPackSubmitted        EventType = "pack.submitted"
	EventPackApproved         EventType = "pack.approved"
	EventPackChangesRequested EventType = "pack.changes_requested"
	EventPackVersionRestored  EventType = "pack.version_restored"
	EventPackExportRequested  EventType = "pack.export_requested"
)

// Event is emitted by the lifecycle manager for every transition.
// Audit, notification and metrics consumers derive their records from it.
type Event struct {
	Type           EventType
	OrganizationID string
	PackID         string
	PackTitle      string
	TemplateID     string
	Category       string // template category
	ActorID        string
	Status         Status
	VersionNumber  int
	RestoredFrom   int // set for EventPackVersionRestored
	Comments       *string
	SectionCount   int // sections carrying reviewer comments
	EvidenceIDs    []string
	ExportID       string
	Format         ExportFormat
	OccurredAt     time.Time
}
