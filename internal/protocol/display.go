package protocol

import (
	"regexp"
	"strings"

	"redspec/internal/domain/models/prd"
)

var (
	sectionBlocks  = regexp.MustCompile(`\[PRD_SECTION:[A-Za-z0-9_]+\][\s\S]*?\[/PRD_SECTION\]`)
	questionBlocks = regexp.MustCompile(`\[QUESTION\][\s\S]*?\[/QUESTION\]`)
)

// StripTags removes every complete section and question block from text
func StripTags(text string) string {
	text = sectionBlocks.ReplaceAllString(text, "")
	text = questionBlocks.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// DisplayText is what a client shows for a turn body: the question prompt
// when the turn asked one, the surrounding prose otherwise.
func DisplayText(body string, question *prd.Question) string {
	if question != nil {
		return question.Text
	}
	return StripTags(body)
}
