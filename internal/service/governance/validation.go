package governance

import (
	"fmt"
	"strings"

	"schoolgle/internal/config"
	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// validationError wraps ozzo errors so handlers can match ErrValidation and
// still surface the per-field details.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}

// validateTransition checks the identifiers every lifecycle call carries
func validateTransition(req *govSvc.TransitionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PackID, validation.Required, is.UUID),
		validation.Field(&req.OrganizationID, validation.Required, is.UUID),
		validation.Field(&req.UserID, validation.Required, is.UUID),
	)
}

// validateScope checks the identifiers of a read
func validateScope(orgID, userID string) error {
	return validation.Errors{
		"organizationId": validation.Validate(orgID, validation.Required, is.UUID),
		"userId":         validation.Validate(userID, validation.Required, is.UUID),
	}.Filter()
}

// validatePackScope checks the identifiers of a read on one pack
func validatePackScope(packID, orgID, userID string) error {
	return validation.Errors{
		"packId":         validation.Validate(packID, validation.Required, is.UUID),
		"organizationId": validation.Validate(orgID, validation.Required, is.UUID),
		"userId":         validation.Validate(userID, validation.Required, is.UUID),
	}.Filter()
}

func validateComments(comments *string) error {
	if comments == nil {
		return nil
	}
	return validation.Validate(*comments, validation.Length(0, config.MaxCommentLength))
}

func validateSectionComments(comments []models.SectionComment) error {
	errs := validation.Errors{}
	for i := range comments {
		c := &comments[i]
		err := validation.ValidateStruct(c,
			validation.Field(&c.SectionID, validation.Required),
			validation.Field(&c.Comment, validation.Required, validation.Length(1, config.MaxCommentLength)),
		)
		if err != nil {
			errs[fmt.Sprintf("%d", i)] = err
		}
	}
	return errs.Filter()
}

// validateSections checks section shape and rejects duplicate IDs
func validateSections(sections []models.Section) error {
	if len(sections) > config.MaxSectionsPerPack {
		return fmt.Errorf("a pack can have at most %d sections", config.MaxSectionsPerPack)
	}

	seen := make(map[string]struct{}, len(sections))
	errs := validation.Errors{}
	for i := range sections {
		s := &sections[i]
		err := validation.ValidateStruct(s,
			validation.Field(&s.ID, validation.Required, validation.By(func(value interface{}) error {
				id, _ := value.(string)
				if _, dup := seen[id]; dup {
					return fmt.Errorf("duplicate section id %q", id)
				}
				seen[id] = struct{}{}
				return nil
			})),
			validation.Field(&s.Title, validation.Required, validation.Length(1, config.MaxSectionTitleLength)),
			validation.Field(&s.Content, validation.Length(0, config.MaxSectionContentLength)),
		)
		if err != nil {
			errs[fmt.Sprintf("%d", i)] = err
		}
	}
	return errs.Filter()
}

// validateTitle validates a pack title
func validateTitle(value interface{}) error {
	var title string
	switch v := value.(type) {
	case string:
		title = v
	case *string:
		if v == nil {
			return nil
		}
		title = *v
	default:
		return fmt.Errorf("title must be a string")
	}

	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len(title) > config.MaxPackTitleLength {
		return fmt.Errorf("title must be at most %d characters", config.MaxPackTitleLength)
	}
	return nil
}

// normalizeSections trims titles and makes sure evidence lists are never nil
func normalizeSections(sections []models.Section) []models.Section {
	out := models.CloneSections(sections)
	for i := range out {
		out[i].ID = strings.TrimSpace(out[i].ID)
		out[i].Title = strings.TrimSpace(out[i].Title)
		if out[i].EvidenceIDs == nil {
			out[i].EvidenceIDs = []string{}
		}
	}
	return out
}

// fieldError attaches err to a single request field
func fieldError(field string, err error) error {
	return validation.Errors{field: err}
}
