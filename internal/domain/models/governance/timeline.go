package governance

import "time"

// SourceTypePack marks timeline entries originating from a pack
const SourceTypePack = "pack"

// TimelineEntry is an organization-wide audit/activity feed record
type TimelineEntry struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	UserID         string    `json:"userId" db:"user_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	EntryType      string    `json:"entryType" db:"entry_type"`
	SourceType     string    `json:"sourceType" db:"source_type"`
	SourceID       string    `json:"sourceId" db:"source_id"`
	EvidenceIDs    []string  `json:"evidenceIds" db:"evidence_ids"`
	Category       string    `json:"category" db:"category"`
	Subcategory    string    `json:"subcategory" db:"subcategory"`
	Icon           string    `json:"icon" db:"icon"`
	Color          string    `json:"color" db:"color"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// TimelineFilter narrows a timeline query. OrganizationID is mandatory.
type TimelineFilter struct {
	OrganizationID string
	SourceType     string
	SourceID       string
	Limit          int
}
