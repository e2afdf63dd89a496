package templates

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"redspec/internal/domain/models/prd"
)

//go:embed config/*.yaml
var configFiles embed.FS

// order in which templates are listed
var builtin = []string{"standard", "mvp", "enhancement", "integration"}

// Registry holds the PRD templates loaded from embedded YAML
type Registry struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded templates
func NewRegistry() (*Registry, error) {
	r := &Registry{
		templates: make(map[string]*Template),
	}

	for _, id := range builtin {
		if err := r.loadTemplateFile(id); err != nil {
			return nil, fmt.Errorf("failed to load %s template: %w", id, err)
		}
	}

	return r, nil
}

func (r *Registry) loadTemplateFile(id string) error {
	filename := fmt.Sprintf("config/%s.yaml", id)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return r.Load(id, data)
}

// Load parses a YAML template and registers it under id, replacing any
// template with the same id.
func (r *Registry) Load(id string, data []byte) error {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return fmt.Errorf("failed to unmarshal template %s: %w", id, err)
	}
	if tmpl.ID == "" {
		tmpl.ID = id
	}
	if tmpl.ID != id {
		return fmt.Errorf("template id %q does not match %q", tmpl.ID, id)
	}
	if len(tmpl.Sections) == 0 {
		return fmt.Errorf("template %s has no sections", id)
	}

	r.mu.Lock()
	r.templates[id] = &tmpl
	r.mu.Unlock()
	return nil
}

// Get returns a template by id
func (r *Registry) Get(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("unknown template: %s", id)
	}
	return tmpl, nil
}

// Has reports whether id is a known template
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[id]
	return ok
}

// IDs returns the known template ids, built-ins first
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	seen := make(map[string]bool, len(builtin))
	for _, id := range builtin {
		if _, ok := r.templates[id]; ok {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var extra []string
	for id := range r.templates {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

// List returns every template in listing order
func (r *Registry) List() []Template {
	ids := r.IDs()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.templates[id])
	}
	return out
}

// MissingSections returns the planned keys that have no non-empty body yet
func MissingSections(tmpl *Template, sections *prd.Sections) []string {
	missing := []string{}
	for _, plan := range tmpl.Sections {
		body, ok := sections.Get(plan.Key)
		if !ok || strings.TrimSpace(body) == "" {
			missing = append(missing, plan.Key)
		}
	}
	return missing
}

// Progress returns the percentage of planned sections present, 0-100
func Progress(tmpl *Template, sections *prd.Sections) int {
	if len(tmpl.Sections) == 0 {
		return 0
	}
	done := len(tmpl.Sections) - len(MissingSections(tmpl, sections))
	return done * 100 / len(tmpl.Sections)
}
