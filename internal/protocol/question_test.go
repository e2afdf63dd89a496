package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQuestion(t *testing.T) {
	tests := []struct {
		name        string
		inner       string
		wantText    string
		wantOptions []string
	}{
		{
			name:        "options block round trip",
			inner:       "What?\n[OPTIONS]\n- A\n- B\n[/OPTIONS]\n",
			wantText:    "What?",
			wantOptions: []string{"A", "B"},
		},
		{
			name:        "options block with mixed markers",
			inner:       "Choose:\n[OPTIONS]\n* Star\n• Dot\n1. One\n2) Two\nPlain\n\n[/OPTIONS]",
			wantText:    "Choose:",
			wantOptions: []string{"Star", "Dot", "One", "Two", "Plain"},
		},
		{
			name:        "options block numeric markers without space",
			inner:       "Pick:\n[OPTIONS]\n1.Red\n2)Blue\n3. Green\n-\n[/OPTIONS]",
			wantText:    "Pick:",
			wantOptions: []string{"Red", "Blue", "Green"},
		},
		{
			name:        "options block keeps decimals",
			inner:       "Clock?\n[OPTIONS]\n3.5 GHz\n4) 4.2 GHz\n[/OPTIONS]",
			wantText:    "Clock?",
			wantOptions: []string{"3.5 GHz", "4.2 GHz"},
		},
		{
			name:        "options block strips only one marker",
			inner:       "Q\n[OPTIONS]\n- - nested\n[/OPTIONS]",
			wantText:    "Q",
			wantOptions: []string{"- nested"},
		},
		{
			name:        "options block in the middle",
			inner:       "Before\n[OPTIONS]\n- A\n[/OPTIONS]\nAfter",
			wantText:    "Before\n\nAfter",
			wantOptions: []string{"A"},
		},
		{
			name:        "empty options block",
			inner:       "Anything else?\n[OPTIONS]\n\n[/OPTIONS]",
			wantText:    "Anything else?",
			wantOptions: []string{},
		},
		{
			name:        "fallback bullets",
			inner:       "Pick one:\n- Red\n- Blue\n",
			wantText:    "Pick one:",
			wantOptions: []string{"Red", "Blue"},
		},
		{
			name:        "fallback numeric",
			inner:       "Which platform\n1. Web\n2) Mobile",
			wantText:    "Which platform",
			wantOptions: []string{"Web", "Mobile"},
		},
		{
			name:        "fallback skips lines with question mark",
			inner:       "- Is this a question?\n- Yes",
			wantText:    "- Is this a question?",
			wantOptions: []string{"Yes"},
		},
		{
			name:        "fallback ignores plain lines",
			inner:       "Tell me more\nabout the users\n- Admins",
			wantText:    "Tell me more\nabout the users",
			wantOptions: []string{"Admins"},
		},
		{
			name:        "fallback does not treat decimals as markers",
			inner:       "Budget\n1.5 million",
			wantText:    "Budget\n1.5 million",
			wantOptions: []string{},
		},
		{
			name:        "fallback numeric without space",
			inner:       "Which platform\n1.Web\n2)Mobile",
			wantText:    "Which platform",
			wantOptions: []string{"Web", "Mobile"},
		},
		{
			name:        "fallback ignores emphasis and rules",
			inner:       "A few notes\n**Note:** these are examples\n---\n*italic aside*",
			wantText:    "A few notes\n**Note:** these are examples\n---\n*italic aside*",
			wantOptions: []string{},
		},
		{
			name:        "fallback bullet needs a space",
			inner:       "Pick one\n-Red\n- Blue\n•\tGreen",
			wantText:    "Pick one\n-Red",
			wantOptions: []string{"Blue", "Green"},
		},
		{
			name:        "zero options",
			inner:       "Just text here",
			wantText:    "Just text here",
			wantOptions: []string{},
		},
		{
			name:        "whitespace only",
			inner:       "  \n ",
			wantText:    "",
			wantOptions: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ExtractQuestion(tt.inner)
			assert.Equal(t, tt.wantText, q.Text)
			assert.Equal(t, tt.wantOptions, q.Options)
		})
	}
}

func TestExtractQuestion_LongLinesAreProse(t *testing.T) {
	long := "- " + strings.Repeat("x", 160)
	q := ExtractQuestion("Intro\n" + long + "\n- Short")

	assert.Equal(t, []string{"Short"}, q.Options)
	assert.Equal(t, "Intro\n"+long, q.Text)
}

func TestHeuristics_Tunable(t *testing.T) {
	h := Heuristics{MaxOptionLineLength: 6, ProseMarker: ""}
	q := h.ExtractQuestion("Pick:\n- Yes?\n- Too long")

	assert.Equal(t, []string{"Yes?"}, q.Options)
	assert.Equal(t, "Pick:\n- Too long", q.Text)
}

func TestExtractQuestion_Deterministic(t *testing.T) {
	inner := "Pick one:\n- Red\n- Blue\n* Green\n3. Yellow"
	first := ExtractQuestion(inner)
	for i := 0; i < 20; i++ {
		again := ExtractQuestion(inner)
		if again.Text != first.Text || strings.Join(again.Options, "|") != strings.Join(first.Options, "|") {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestParse_QuestionFixtures(t *testing.T) {
	q := Parse("[QUESTION]What?\n[OPTIONS]\n- A\n- B\n[/OPTIONS]\n[/QUESTION]").Question
	if assert.NotNil(t, q) {
		assert.Equal(t, "What?", q.Text)
		assert.Equal(t, []string{"A", "B"}, q.Options)
	}

	q = Parse("[QUESTION]Pick one:\n- Red\n- Blue\n[/QUESTION]").Question
	if assert.NotNil(t, q) {
		assert.Equal(t, "Pick one:", q.Text)
		assert.Equal(t, []string{"Red", "Blue"}, q.Options)
	}

	q = Parse("[QUESTION]Just text here[/QUESTION]").Question
	if assert.NotNil(t, q) {
		assert.Equal(t, "Just text here", q.Text)
		assert.NotNil(t, q.Options)
		assert.Len(t, q.Options, 0)
	}
}
