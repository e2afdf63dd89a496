package protocol

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"redspec/internal/domain/models/prd"
)

var (
	optionsPattern = regexp.MustCompile(`\[OPTIONS\]([\s\S]*?)\[/OPTIONS\]`)

	bulletPrefix  = regexp.MustCompile(`^\s*[-*•]`)
	numericPrefix = regexp.MustCompile(`^\s*\d+[.)]`)
)

// Heuristics tunes the fallback option scan used when a question carries no
// [OPTIONS] block. Lines longer than MaxOptionLineLength characters or
// containing ProseMarker are treated as prose rather than options.
type Heuristics struct {
	MaxOptionLineLength int
	ProseMarker         string
}

// DefaultHeuristics matches what generation prompts are tuned against
var DefaultHeuristics = Heuristics{
	MaxOptionLineLength: 150,
	ProseMarker:         "?",
}

// ExtractQuestion builds a question from the interior of a question block
// using the default heuristics.
func ExtractQuestion(inner string) prd.Question {
	return DefaultHeuristics.ExtractQuestion(inner)
}

// ExtractQuestion builds a question from the interior of a question block.
// An explicit [OPTIONS] block takes precedence over the line scan. A question
// without options is valid and has an empty, non-nil option list.
func (h Heuristics) ExtractQuestion(inner string) prd.Question {
	if loc := optionsPattern.FindStringSubmatchIndex(inner); loc != nil {
		block := inner[loc[2]:loc[3]]
		text := inner[:loc[0]] + inner[loc[1]:]
		return prd.Question{
			Text:    strings.TrimSpace(text),
			Options: splitOptions(block),
		}
	}
	return h.scanOptions(inner)
}

func splitOptions(block string) []string {
	options := []string{}
	for _, line := range strings.Split(block, "\n") {
		opt := strings.TrimSpace(StripOptionPrefix(line))
		if opt != "" {
			options = append(options, opt)
		}
	}
	return options
}

func (h Heuristics) scanOptions(inner string) prd.Question {
	options := []string{}
	var kept []string

	for _, line := range strings.Split(inner, "\n") {
		n := markerLength(line, true)
		if h.isProse(line) || n == 0 {
			kept = append(kept, line)
			continue
		}
		if opt := strings.TrimSpace(line[n:]); opt != "" {
			options = append(options, opt)
		}
	}

	return prd.Question{
		Text:    strings.TrimSpace(strings.Join(kept, "\n")),
		Options: options,
	}
}

func (h Heuristics) isProse(line string) bool {
	if h.MaxOptionLineLength > 0 && utf8.RuneCountInString(line) > h.MaxOptionLineLength {
		return true
	}
	return h.ProseMarker != "" && strings.Contains(line, h.ProseMarker)
}

// StripOptionPrefix removes a single leading list marker from line: a bullet
// (-, * or •) or a numeric marker (1. or 1)) not followed by a digit, so
// "1.Red" loses its marker and "3.5 GHz" keeps its number.
func StripOptionPrefix(line string) string {
	return line[markerLength(line, false):]
}

// markerLength returns the byte length of the leading list marker, or 0.
// In strict mode a bullet must be followed by whitespace or end of line, so
// "**bold**" and "---" are not read as options.
func markerLength(line string, strict bool) int {
	if loc := bulletPrefix.FindStringIndex(line); loc != nil {
		if strict && !spaceOrEnd(line[loc[1]:]) {
			return 0
		}
		return loc[1]
	}
	if loc := numericPrefix.FindStringIndex(line); loc != nil {
		rest := line[loc[1]:]
		if r, _ := utf8.DecodeRuneInString(rest); rest == "" || !unicode.IsDigit(r) {
			return loc[1]
		}
	}
	return 0
}

func spaceOrEnd(rest string) bool {
	r, _ := utf8.DecodeRuneInString(rest)
	return rest == "" || unicode.IsSpace(r)
}
