package templates

import (
	"schoolgle/internal/domain/models/governance"

	"gopkg.in/yaml.v3"
)

// templateEntry is the YAML shape of a single template; the ID is its map key
type templateEntry struct {
	Name        string                       `yaml:"name"`
	Category    string                       `yaml:"category"`
	Description string                       `yaml:"description"`
	Sections    []governance.TemplateSection `yaml:"sections"`
}

// catalogFile is one embedded YAML file of templates
type catalogFile struct {
	Templates []governance.Template `yaml:"-"` // ordered, populated by UnmarshalYAML
}

// UnmarshalYAML keeps templates in file order so the catalogue lists them as authored
func (c *catalogFile) UnmarshalYAML(node *yaml.Node) error {
	var byID struct {
		Templates map[string]templateEntry `yaml:"templates"`
	}
	if err := node.Decode(&byID); err != nil {
		return err
	}

	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value != "templates" {
			continue
		}
		// key, value, key, value...
		templatesNode := node.Content[i+1]
		for j := 0; j < len(templatesNode.Content); j += 2 {
			id := templatesNode.Content[j].Value
			entry, ok := byID.Templates[id]
			if !ok {
				continue
			}
			c.Templates = append(c.Templates, governance.Template{
				ID:          id,
				Name:        entry.Name,
				Category:    entry.Category,
				Description: entry.Description,
				Sections:    entry.Sections,
			})
		}
		break
	}

	return nil
}
