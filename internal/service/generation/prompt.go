package generation

import (
	"fmt"
	"strings"

	"redspec/internal/templates"
)

const baseInstruction = `You are a senior product manager helping a user write a Product Requirements Document (PRD) through conversation.

Rules:
- Ask only ONE question per response and wait for the answer.
- Read the whole conversation history and keep every question relevant to the feature being discussed.
- Generate the title yourself from the user's story. Never ask the user to name the feature.
- As soon as you have enough information for a section, write it. You write the PRD; the user only answers.
- Acknowledge the user's answer briefly before asking the next question.
- To revise a section, emit it again with the same key. The newest version replaces the old one.

Write every PRD section in this format:
[PRD_SECTION:section_key]
# Section Title
Content
[/PRD_SECTION]

Ask questions in this format, offering 3-5 options specific to the feature:
[QUESTION]
Your question text

[OPTIONS]
- Option 1
- Option 2
- Other (specify)
[/OPTIONS]
[/QUESTION]

Section keys are lowercase snake_case.`

// BuildSystemPrompt returns the tag protocol instruction followed by the
// section plan of tmpl. A nil template yields the base instruction only.
func BuildSystemPrompt(tmpl *templates.Template) string {
	if tmpl == nil {
		return baseInstruction
	}

	var b strings.Builder
	b.WriteString(baseInstruction)
	fmt.Fprintf(&b, "\n\nThis PRD uses the %q template: %s\n", tmpl.DisplayName, tmpl.Description)
	b.WriteString("Build these sections in order:\n")
	for i, s := range tmpl.Sections {
		fmt.Fprintf(&b, "%d. %s (key: %s)", i+1, s.Title, s.Key)
		if s.Guidance != "" {
			fmt.Fprintf(&b, " - %s", s.Guidance)
		}
		b.WriteString("\n")
		if s.Question != "" {
			fmt.Fprintf(&b, "   Suggested question: %s\n", s.Question)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
