package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"schoolgle/internal/domain/models/governance"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the governor pack templates
type Registry struct {
	templates []governance.Template
	byID      map[string]int
	mu        sync.RWMutex
}

// NewRegistry creates a registry and loads every embedded YAML file
func NewRegistry() (*Registry, error) {
	r := &Registry{byID: make(map[string]int)}

	files, err := fs.Glob(configFiles, "config/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list template files: %w", err)
	}

	for _, filename := range files {
		data, err := configFiles.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		if err := r.load(data); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", filename, err)
		}
	}

	return r, nil
}

// load parses one catalogue file and adds its templates
func (r *Registry) load(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("unmarshal templates: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range file.Templates {
		if t.Category == "" {
			return fmt.Errorf("template %s has no category", t.ID)
		}
		if len(t.Sections) == 0 {
			return fmt.Errorf("template %s has no sections", t.ID)
		}
		if _, exists := r.byID[t.ID]; exists {
			return fmt.Errorf("duplicate template id %s", t.ID)
		}
		r.byID[t.ID] = len(r.templates)
		r.templates = append(r.templates, t)
	}

	return nil
}

// Get returns a template by ID
func (r *Registry) Get(id string) (*governance.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	t := r.templates[i]
	return &t, true
}

// List returns all templates (ordered as defined in YAML)
func (r *Registry) List() []governance.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]governance.Template, len(r.templates))
	copy(out, r.templates)
	return out
}
