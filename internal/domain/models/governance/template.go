package governance

// Template describes a governor pack template and the sections a new pack starts with
type Template struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Category    string            `json:"category" yaml:"category"`
	Description string            `json:"description" yaml:"description"`
	Sections    []TemplateSection `json:"sections" yaml:"sections"`
}

// TemplateSection is a section heading with optional writing guidance
type TemplateSection struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Guidance string `json:"guidance,omitempty" yaml:"guidance"`
}

// NewSections returns empty working sections for a new pack
func (t *Template) NewSections() []Section {
	sections := make([]Section, 0, len(t.Sections))
	for _, s := range t.Sections {
		sections = append(sections, Section{
			ID:          s.ID,
			Title:       s.Title,
			EvidenceIDs: []string{},
		})
	}
	return sections
}
