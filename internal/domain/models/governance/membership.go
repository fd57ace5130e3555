package governance

import "time"

// Member links a user to an organization (tenant)
type Member struct {
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	UserID         string    `json:"userId" db:"user_id"`
	Role           string    `json:"role" db:"role"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
