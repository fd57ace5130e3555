package governance

import "time"

// VersionTrigger records which transition produced a snapshot
type VersionTrigger string

const (
	TriggerSubmit  VersionTrigger = "submit"
	TriggerRestore VersionTrigger = "restore"
)

// Version is an immutable snapshot of a pack's sections.
// VersionNumber is unique per pack and strictly increasing from 1.
type Version struct {
	ID             string         `json:"id" db:"id"`
	PackID         string         `json:"packId" db:"pack_id"`
	OrganizationID string         `json:"organizationId" db:"organization_id"`
	VersionNumber  int            `json:"versionNumber" db:"version_number"`
	Sections       []Section      `json:"sections" db:"sections"`
	Trigger        VersionTrigger `json:"trigger" db:"trigger"`
	CreatedBy      string         `json:"createdBy" db:"created_by"`
	ChangeSummary  string         `json:"changeSummary" db:"change_summary"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
}
