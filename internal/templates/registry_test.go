package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redspec/internal/domain/models/prd"
)

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"standard", "mvp", "enhancement", "integration"}, registry.IDs())
	for _, id := range registry.IDs() {
		assert.True(t, registry.Has(id))
		tmpl, err := registry.Get(id)
		require.NoError(t, err)
		assert.Equal(t, id, tmpl.ID)
		assert.NotEmpty(t, tmpl.DisplayName)
		require.NotEmpty(t, tmpl.Sections)
		assert.Equal(t, "title", tmpl.Sections[0].Key, "%s must start with the title", id)
	}

	_, err = registry.Get("unknown")
	assert.Error(t, err)
	assert.False(t, registry.Has("unknown"))
}

func TestTemplate_SectionOrderPreserved(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	tmpl, err := registry.Get("mvp")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"title", "problem_statement", "scope", "goals_success_metrics", "functional_requirements", "release_plan"},
		tmpl.SectionKeys(),
	)

	plan := tmpl.Section("goals_success_metrics")
	require.NotNil(t, plan)
	assert.Equal(t, "Goals & Success Metrics", plan.Title)
	assert.Len(t, plan.Options, 4)
	assert.Nil(t, tmpl.Section("missing"))
}

func TestRegistry_Load(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	custom := []byte(`
id: custom
display_name: Custom
sections:
  zeta:
    title: Zeta
  alpha:
    title: Alpha
`)
	require.NoError(t, registry.Load("custom", custom))

	tmpl, err := registry.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, tmpl.SectionKeys())
	assert.Equal(t, "custom", registry.IDs()[4])
	assert.Len(t, registry.List(), 5)

	tests := []struct {
		name string
		id   string
		data string
	}{
		{"invalid yaml", "bad", "sections: [unclosed"},
		{"mismatched id", "other", "id: custom\nsections:\n  title:\n    title: T\n"},
		{"no sections", "empty", "id: empty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, registry.Load(tt.id, []byte(tt.data)))
		})
	}
}

func TestMissingSectionsAndProgress(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)
	tmpl, err := registry.Get("mvp")
	require.NoError(t, err)

	sections := prd.SectionsFromPairs("title", "# T", "scope", "   ", "custom", "x")
	assert.Equal(t,
		[]string{"problem_statement", "scope", "goals_success_metrics", "functional_requirements", "release_plan"},
		MissingSections(tmpl, sections),
	)
	assert.Equal(t, 16, Progress(tmpl, sections))

	assert.Len(t, MissingSections(tmpl, nil), 6)
	assert.Equal(t, 0, Progress(tmpl, nil))
}
