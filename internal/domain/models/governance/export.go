package governance

import (
	"fmt"
	"time"
)

// ExportFormat is a supported export document type
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatDOCX ExportFormat = "docx"
)

// SupportedFormats lists the export formats in display order
var SupportedFormats = []ExportFormat{FormatPDF, FormatDOCX}

// Valid reports whether f is a supported export format
func (f ExportFormat) Valid() bool {
	for _, s := range SupportedFormats {
		if f == s {
			return true
		}
	}
	return false
}

// NextActionBrowserPrint tells the client to render the document itself
const NextActionBrowserPrint = "trigger_browser_print"

// ExportRecord is metadata about a requested export. The binary is produced
// client-side; FileURL is a placeholder locator until an upload replaces it.
type ExportRecord struct {
	ID             string       `json:"id" db:"id"`
	PackID         string       `json:"packId" db:"pack_id"`
	OrganizationID string       `json:"organizationId" db:"organization_id"`
	VersionNumber  int          `json:"versionNumber" db:"version_number"`
	Format         ExportFormat `json:"format" db:"format"`
	FileURL        string       `json:"fileUrl" db:"file_url"`
	RequestedBy    string       `json:"requestedBy" db:"requested_by"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
}

// PlaceholderFileURL builds the locator stored before any file exists
func PlaceholderFileURL(packID string, version int, format ExportFormat) string {
	return fmt.Sprintf("pending://packs/%s/v%d.%s", packID, version, format)
}
