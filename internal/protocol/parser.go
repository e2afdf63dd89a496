// Package protocol implements the tag grammar exchanged with the generation
// collaborator:
//
//	[PRD_SECTION:<key>] body [/PRD_SECTION]           repeatable, last wins per key
//	[QUESTION] prompt [OPTIONS] lines [/OPTIONS] [/QUESTION]   first block only
//
// Every function in this package is pure. Malformed or unterminated tags are
// not errors; the construct is simply not recognised.
package protocol

import (
	"regexp"
	"strings"

	"redspec/internal/domain/models/prd"
)

var (
	sectionPattern  = regexp.MustCompile(`\[PRD_SECTION:([A-Za-z0-9_]+)\]([\s\S]*?)\[/PRD_SECTION\]`)
	questionPattern = regexp.MustCompile(`\[QUESTION\]([\s\S]*?)\[/QUESTION\]`)
	keyPattern      = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Result is what one generated response contributes to a document
type Result struct {
	Sections *prd.Sections
	Question *prd.Question
}

// HasQuestion reports whether a question block was found
func (r *Result) HasQuestion() bool {
	return r.Question != nil
}

// Parse extracts sections and the first question from text using the
// default option heuristics.
func Parse(text string) Result {
	return DefaultHeuristics.Parse(text)
}

// Parse extracts sections and the first question from text
func (h Heuristics) Parse(text string) Result {
	return Result{
		Sections: ParseSections(text),
		Question: h.parseQuestion(text),
	}
}

// ParseSections returns every well-formed section in document order. A key
// that appears more than once keeps its first position and its last body.
func ParseSections(text string) *prd.Sections {
	sections := prd.NewSections()
	for _, m := range sectionPattern.FindAllStringSubmatch(text, -1) {
		sections.Set(m[1], strings.TrimSpace(m[2]))
	}
	return sections
}

// QuestionBlock returns the interior of the first question block
func QuestionBlock(text string) (string, bool) {
	m := questionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (h Heuristics) parseQuestion(text string) *prd.Question {
	inner, ok := QuestionBlock(text)
	if !ok {
		return nil
	}
	q := h.ExtractQuestion(inner)
	return &q
}

// ValidKey reports whether key is usable as a section key
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
