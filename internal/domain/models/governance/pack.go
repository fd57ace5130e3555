package governance

import (
	"time"
)

// Status is the lifecycle state of a governor pack
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusChangesRequested Status = "changes_requested"
	StatusApproved         Status = "approved"
)

// Valid reports whether s is a known pack status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusChangesRequested, StatusApproved:
		return true
	}
	return false
}

// CanSubmit reports whether a pack in status s may be submitted for approval.
// Submitted and approved packs must be restored (back to draft) first.
func (s Status) CanSubmit() bool {
	return s != StatusSubmitted && s != StatusApproved
}

// CanEdit reports whether the working sections of a pack may be saved.
func (s Status) CanEdit() bool {
	return s == StatusDraft || s == StatusChangesRequested
}

// Pack is a governance document instance (e.g. a termly governor report).
// Sections always hold the latest saved content; history lives in Version rows.
type Pack struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	TemplateID     string    `json:"templateId" db:"template_id"`
	Title          string    `json:"title" db:"title"`
	Status         Status    `json:"status" db:"status"`
	Sections       []Section `json:"sections" db:"sections"`
	CurrentVersion int       `json:"currentVersion" db:"current_version"` // 0 until first submit
	CreatedBy      string    `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// Section is a titled content block within a pack
type Section struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	EvidenceIDs []string `json:"evidenceIds"`
	Comments    []string `json:"comments,omitempty"`
}

// CloneSections returns a deep copy so snapshots never alias live pack content
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return []Section{}
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s
		out[i].EvidenceIDs = append([]string{}, s.EvidenceIDs...)
		if s.Comments != nil {
			out[i].Comments = append([]string{}, s.Comments...)
		}
	}
	return out
}

// EvidenceIDs returns the distinct evidence ids referenced across sections, in order of first use
func EvidenceIDs(sections []Section) []string {
	seen := make(map[string]struct{})
	ids := []string{}
	for _, s := range sections {
		for _, id := range s.EvidenceIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
