package protocol

import (
	"sort"
	"strings"

	"redspec/internal/domain/models/prd"
)

// CanonicalOrder is the section priority used when assembling a document
var CanonicalOrder = []string{
	"title",
	"overview",
	"objective",
	"context",
	"problem_statement",
	"assumptions",
	"scope",
	"goals_success_metrics",
	"user_stories_personas",
	"functional_requirements",
	"non_functional_requirements",
	"technical_considerations",
	"analytics_tracking",
	"design_requirements",
	"open_questions_risks",
	"release_plan",
	"dependencies_blockers",
	"stakeholders_approvals",
}

var canonicalRank = func() map[string]int {
	rank := make(map[string]int, len(CanonicalOrder))
	for i, k := range CanonicalOrder {
		rank[k] = i
	}
	return rank
}()

// IsCanonical reports whether key belongs to the canonical vocabulary
func IsCanonical(key string) bool {
	_, ok := canonicalRank[key]
	return ok
}

// OrderedKeys returns the keys of sections in assembly order: canonical keys
// by priority, then unknown keys sorted lexicographically.
func OrderedKeys(sections *prd.Sections) []string {
	var known, unknown []string
	for _, k := range sections.Keys() {
		if IsCanonical(k) {
			known = append(known, k)
		} else {
			unknown = append(unknown, k)
		}
	}
	sort.SliceStable(known, func(i, j int) bool {
		return canonicalRank[known[i]] < canonicalRank[known[j]]
	})
	sort.Strings(unknown)
	return append(known, unknown...)
}

// Assemble joins section bodies in assembly order with a blank line between
// consecutive bodies. Empty bodies stay as empty segments.
func Assemble(sections *prd.Sections) string {
	keys := OrderedKeys(sections)
	bodies := make([]string, 0, len(keys))
	for _, k := range keys {
		body, _ := sections.Get(k)
		bodies = append(bodies, body)
	}
	return strings.Join(bodies, "\n\n")
}

// SectionTitle turns a snake_case key into a display title
func SectionTitle(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
