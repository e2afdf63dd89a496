package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redspec/internal/domain/models/prd"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name     string
		sections *prd.Sections
		want     string
	}{
		{
			name:     "nil sections",
			sections: nil,
			want:     "",
		},
		{
			name:     "canonical order wins over insertion order",
			sections: prd.SectionsFromPairs("scope", "S", "title", "# T", "problem_statement", "P"),
			want:     "# T\n\nP\n\nS",
		},
		{
			name:     "unknown keys sorted after canonical",
			sections: prd.SectionsFromPairs("zeta", "Z", "alpha", "A", "overview", "O"),
			want:     "O\n\nA\n\nZ",
		},
		{
			name:     "empty bodies kept as segments",
			sections: prd.SectionsFromPairs("title", "T", "overview", "", "scope", "S"),
			want:     "T\n\n\n\nS",
		},
		{
			name:     "single section",
			sections: prd.SectionsFromPairs("custom", "only"),
			want:     "only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(tt.sections)
			if got != tt.want {
				t.Errorf("Assemble() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble_Pure(t *testing.T) {
	sections := prd.SectionsFromPairs("b_custom", "B", "title", "T", "a_custom", "A", "scope", "S")
	before := sections.Clone()

	first := Assemble(sections)
	second := Assemble(sections)

	assert.Equal(t, first, second)
	assert.True(t, sections.Equal(before), "Assemble must not reorder its input")
}

func TestOrderedKeys(t *testing.T) {
	sections := prd.SectionsFromPairs(
		"stakeholders_approvals", "", "custom", "", "title", "", "Beta", "", "context", "",
	)
	assert.Equal(t,
		[]string{"title", "context", "stakeholders_approvals", "Beta", "custom"},
		OrderedKeys(sections),
	)
}

func TestSectionTitle(t *testing.T) {
	tests := map[string]string{
		"title":                       "Title",
		"problem_statement":           "Problem Statement",
		"goals_success_metrics":       "Goals Success Metrics",
		"non_functional_requirements": "Non Functional Requirements",
		"API":                         "Api",
		"":                            "",
	}
	for key, want := range tests {
		if got := SectionTitle(key); got != want {
			t.Errorf("SectionTitle(%q) = %q, want %q", key, got, want)
		}
	}
}

// Three assistant responses: the first introduces the title, the second the
// problem statement, the third rewrites the title.
func TestThreeTurnScenario(t *testing.T) {
	responses := []string{
		"Let's start.\n[PRD_SECTION:title]\n# Ratings v1\n[/PRD_SECTION]\n" +
			"[QUESTION]What problem are we solving?\n[OPTIONS]\n- Low engagement\n- Poor feedback\n[/OPTIONS]\n[/QUESTION]",
		"[PRD_SECTION:problem_statement]\nUsers cannot rate sellers.\n[/PRD_SECTION]\n" +
			"[QUESTION]Who are the users?\n- Buyers\n- Sellers\n[/QUESTION]",
		"Renamed it.\n[PRD_SECTION:title]\n# Ratings v2\n[/PRD_SECTION]",
	}

	store := prd.NewSections()
	for _, text := range responses {
		store.Merge(Parse(text).Sections)
	}

	require.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"title", "problem_statement"}, store.Keys())

	title, _ := store.Get("title")
	assert.Equal(t, "# Ratings v2", title)
	problem, _ := store.Get("problem_statement")
	assert.Equal(t, "Users cannot rate sellers.", problem)

	assert.Equal(t, "# Ratings v2\n\nUsers cannot rate sellers.", Assemble(store))
}

func TestMerge_Idempotent(t *testing.T) {
	base := prd.SectionsFromPairs("title", "T", "scope", "S")
	incoming := Parse("[PRD_SECTION:scope]S2[/PRD_SECTION][PRD_SECTION:context]C[/PRD_SECTION]").Sections

	once := base.Clone().Merge(incoming)
	twice := base.Clone().Merge(incoming).Merge(incoming)

	assert.True(t, once.Equal(twice))
	assert.Equal(t, []string{"title", "scope", "context"}, once.Keys())
}
