package templates

import "gopkg.in/yaml.v3"

// SectionPlan describes one section a template expects
type SectionPlan struct {
	// Key is set during YAML unmarshaling
	Key string `yaml:"-" json:"key"`

	Title    string   `yaml:"title" json:"title"`
	Guidance string   `yaml:"guidance" json:"guidance"`
	Question string   `yaml:"question" json:"question,omitempty"`
	Options  []string `yaml:"options" json:"options,omitempty"`
}

// Template is a PRD flavour: which sections to build and in what order
type Template struct {
	ID          string        `yaml:"id" json:"id"`
	DisplayName string        `yaml:"display_name" json:"display_name"`
	Description string        `yaml:"description" json:"description"`
	Sections    []SectionPlan `yaml:"-" json:"sections"` // Ordered slice, populated by custom unmarshaler
}

// SectionKeys returns the planned section keys in order
func (t *Template) SectionKeys() []string {
	keys := make([]string, len(t.Sections))
	for i, s := range t.Sections {
		keys[i] = s.Key
	}
	return keys
}

// Section returns the plan for key, or nil
func (t *Template) Section(key string) *SectionPlan {
	for i := range t.Sections {
		if t.Sections[i].Key == key {
			return &t.Sections[i]
		}
	}
	return nil
}

// UnmarshalYAML preserves the section order from the YAML file
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	type plain struct {
		ID          string                 `yaml:"id"`
		DisplayName string                 `yaml:"display_name"`
		Description string                 `yaml:"description"`
		Sections    map[string]SectionPlan `yaml:"sections"`
	}
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	t.ID = p.ID
	t.DisplayName = p.DisplayName
	t.Description = p.Description

	// node.Content alternates key, value, key, value...
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "sections" {
			continue
		}
		sectionsNode := node.Content[i+1]
		for j := 0; j+1 < len(sectionsNode.Content); j += 2 {
			key := sectionsNode.Content[j].Value
			if plan, ok := p.Sections[key]; ok {
				plan.Key = key
				t.Sections = append(t.Sections, plan)
			}
		}
		break
	}

	return nil
}
