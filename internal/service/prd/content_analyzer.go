package prd

import (
	"regexp"
	"strings"
	"unicode"

	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/protocol"
)

var (
	fencedCode   = regexp.MustCompile("(?s)```.*?```")
	listMarker   = regexp.MustCompile(`^(?:[-*+]\s+|\d+[.)]\s+)`)
	linkTarget   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRuns = strings.NewReplacer("**", "", "__", "", "~~", "", "`", "", "*", "", "_", " ")
)

type contentAnalyzer struct{}

// NewContentAnalyzer creates the markdown analyzer used for section word counts
func NewContentAnalyzer() prdSvc.ContentAnalyzer {
	return &contentAnalyzer{}
}

// CountWords counts words in markdown, ignoring markup and PRD tags
func (a *contentAnalyzer) CountWords(markdown string) int {
	count := 0
	for _, word := range strings.FieldsFunc(a.CleanMarkdown(markdown), unicode.IsSpace) {
		if strings.IndexFunc(word, isWordRune) >= 0 {
			count++
		}
	}
	return count
}

// CleanMarkdown reduces markdown to plain prose
func (a *contentAnalyzer) CleanMarkdown(markdown string) string {
	text := protocol.StripTags(markdown)
	text = fencedCode.ReplaceAllString(text, " ")
	text = linkTarget.ReplaceAllString(text, "$1")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#>")
		line = strings.TrimSpace(line)
		if line == "---" || line == "***" {
			line = ""
		}
		lines[i] = listMarker.ReplaceAllString(line, "")
	}

	// table pipes separate cells
	text = strings.ReplaceAll(strings.Join(lines, " "), "|", " ")
	return emphasisRuns.Replace(text)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
