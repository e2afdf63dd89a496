package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSections(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKeys []string
		wantBody map[string]string
	}{
		{
			name:     "no tags",
			text:     "Hello there, tell me about your product.",
			wantKeys: []string{},
		},
		{
			name:     "single section trimmed",
			text:     "[PRD_SECTION:title]\n# Rating System\n[/PRD_SECTION]",
			wantKeys: []string{"title"},
			wantBody: map[string]string{"title": "# Rating System"},
		},
		{
			name: "distinct keys with surrounding prose",
			text: "Great idea!\n[PRD_SECTION:title]# A[/PRD_SECTION] some prose " +
				"[PRD_SECTION:problem_statement]Users churn[/PRD_SECTION]\nThanks",
			wantKeys: []string{"title", "problem_statement"},
			wantBody: map[string]string{"title": "# A", "problem_statement": "Users churn"},
		},
		{
			name: "repeated key keeps last body",
			text: "[PRD_SECTION:scope]first[/PRD_SECTION]" +
				"[PRD_SECTION:overview]ov[/PRD_SECTION]" +
				"[PRD_SECTION:scope]second[/PRD_SECTION]" +
				"[PRD_SECTION:scope]third[/PRD_SECTION]",
			wantKeys: []string{"scope", "overview"},
			wantBody: map[string]string{"scope": "third", "overview": "ov"},
		},
		{
			name:     "key case preserved",
			text:     "[PRD_SECTION:Custom_Key2]x[/PRD_SECTION]",
			wantKeys: []string{"Custom_Key2"},
			wantBody: map[string]string{"Custom_Key2": "x"},
		},
		{
			name:     "unterminated section",
			text:     "[PRD_SECTION:title]body",
			wantKeys: []string{},
		},
		{
			name:     "invalid key characters",
			text:     "[PRD_SECTION:bad-key]body[/PRD_SECTION]",
			wantKeys: []string{},
		},
		{
			name:     "unterminated then complete",
			text:     "[PRD_SECTION:title]dangling [PRD_SECTION:scope]ok[/PRD_SECTION]",
			wantKeys: []string{"title"},
			wantBody: map[string]string{"title": "dangling [PRD_SECTION:scope]ok"},
		},
		{
			name:     "empty body",
			text:     "[PRD_SECTION:context]   [/PRD_SECTION]",
			wantKeys: []string{"context"},
			wantBody: map[string]string{"context": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := ParseSections(tt.text)
			keys := sections.Keys()
			if keys == nil {
				keys = []string{}
			}
			assert.Equal(t, tt.wantKeys, keys)
			for k, want := range tt.wantBody {
				got, ok := sections.Get(k)
				require.True(t, ok, "missing key %s", k)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestParse_NDistinctKeys(t *testing.T) {
	text := ""
	for _, k := range CanonicalOrder {
		text += "[PRD_SECTION:" + k + "]body of " + k + "[/PRD_SECTION]\n"
	}

	result := Parse(text)
	if result.Sections.Len() != len(CanonicalOrder) {
		t.Fatalf("expected %d sections, got %d", len(CanonicalOrder), result.Sections.Len())
	}
	if result.HasQuestion() {
		t.Error("expected no question")
	}
}

func TestParse_Question(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		result := Parse("[PRD_SECTION:title]x[/PRD_SECTION]")
		assert.Nil(t, result.Question)
	})

	t.Run("first block wins", func(t *testing.T) {
		result := Parse("[QUESTION]First one[/QUESTION] and [QUESTION]Second one[/QUESTION]")
		require.NotNil(t, result.Question)
		assert.Equal(t, "First one", result.Question.Text)
		assert.Empty(t, result.Question.Options)
	})

	t.Run("unterminated question", func(t *testing.T) {
		result := Parse("[QUESTION]What now?\n[OPTIONS]\n- A\n[/OPTIONS]")
		assert.Nil(t, result.Question)
	})

	t.Run("sections and question together", func(t *testing.T) {
		text := "[PRD_SECTION:title]\n# Enhanced User Rating System\n[/PRD_SECTION]\n\n" +
			"[QUESTION]\nWhat problem are we solving?\n[OPTIONS]\n- Low response rate\n[/OPTIONS]\n[/QUESTION]"
		result := Parse(text)

		body, ok := result.Sections.Get("title")
		require.True(t, ok)
		assert.Equal(t, "# Enhanced User Rating System", body)
		require.NotNil(t, result.Question)
		assert.Equal(t, "What problem are we solving?", result.Question.Text)
		assert.Equal(t, []string{"Low response rate"}, result.Question.Options)
	})
}

func TestValidKey(t *testing.T) {
	valid := []string{"title", "problem_statement", "Key2", "_x"}
	invalid := []string{"", "bad-key", "with space", "émoji"}

	for _, k := range valid {
		if !ValidKey(k) {
			t.Errorf("expected %q to be valid", k)
		}
	}
	for _, k := range invalid {
		if ValidKey(k) {
			t.Errorf("expected %q to be invalid", k)
		}
	}
}
