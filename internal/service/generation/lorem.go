package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"

	"redspec/internal/protocol"
	"redspec/internal/templates"
)

// LoremGenerator is an offline collaborator for development and tests.
// It walks the template's section plan one step per exchange, emitting a
// lorem ipsum section and the next planned question in the tag protocol.
type LoremGenerator struct {
	generator *loremgen.Lorem
	delay     time.Duration
	mu        sync.Mutex
}

// NewLoremGenerator creates a lorem generator. delay simulates latency.
func NewLoremGenerator(delay time.Duration) *LoremGenerator {
	return &LoremGenerator{
		generator: loremgen.New(),
		delay:     delay,
	}
}

// Name returns the provider name
func (g *LoremGenerator) Name() string {
	return "lorem"
}

// Generate emits the section for the current step and asks the next question
func (g *LoremGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	plan := loremPlan(req.Template)
	step := assistantTurns(req.Transcript)

	var b strings.Builder
	if step < len(plan) {
		key := plan[step].Key
		fmt.Fprintf(&b, "Thanks, that helps. %s\n\n", g.sentence(4, 8))
		fmt.Fprintf(&b, "[PRD_SECTION:%s]\n%s\n[/PRD_SECTION]\n\n", key, g.sectionBody(key, plan[step].Title))
	} else {
		b.WriteString("Every planned section now has a draft.\n\n")
	}

	next := step + 1
	if next < len(plan) && plan[next].Question != "" {
		b.WriteString(formatQuestion(plan[next].Question, g.options(plan[next].Options)))
	} else if next < len(plan) {
		b.WriteString(formatQuestion(fmt.Sprintf("What should the %s cover?", strings.ToLower(plan[next].Title)), g.options(nil)))
	} else {
		b.WriteString(formatQuestion("Would you like to refine any section?", []string{"Looks good", "Refine a section", "Other (specify)"}))
	}

	text := b.String()
	return &Response{
		Text:         text,
		Provider:     g.Name(),
		Model:        "lorem",
		InputTokens:  len(strings.Fields(req.Prompt())),
		OutputTokens: len(strings.Fields(text)), // Word count as proxy
	}, nil
}

// golorem is not safe for concurrent use
func (g *LoremGenerator) sentence(min, max int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generator.Sentence(min, max)
}

func (g *LoremGenerator) paragraph(min, max int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generator.Paragraph(min, max)
}

func (g *LoremGenerator) sectionBody(key, title string) string {
	if key == "title" {
		return "# " + strings.TrimRight(g.sentence(2, 5), ".")
	}
	return fmt.Sprintf("# %s\n\n%s", title, g.paragraph(2, 4))
}

func (g *LoremGenerator) options(planned []string) []string {
	if len(planned) > 0 {
		return planned
	}
	opts := make([]string, 0, 4)
	for i := 0; i < 3; i++ {
		opts = append(opts, strings.TrimRight(g.sentence(2, 4), "."))
	}
	return append(opts, "Other (specify)")
}

func formatQuestion(text string, options []string) string {
	var b strings.Builder
	b.WriteString("[QUESTION]\n")
	b.WriteString(text)
	b.WriteString("\n\n[OPTIONS]\n")
	for _, opt := range options {
		b.WriteString("- ")
		b.WriteString(opt)
		b.WriteString("\n")
	}
	b.WriteString("[/OPTIONS]\n[/QUESTION]")
	return b.String()
}

// loremPlan falls back to the canonical order when no template is given
func loremPlan(tmpl *templates.Template) []templates.SectionPlan {
	if tmpl != nil && len(tmpl.Sections) > 0 {
		return tmpl.Sections
	}
	plan := make([]templates.SectionPlan, len(protocol.CanonicalOrder))
	for i, key := range protocol.CanonicalOrder {
		plan[i] = templates.SectionPlan{Key: key, Title: protocol.SectionTitle(key)}
	}
	return plan
}

// assistantTurns counts the assistant entries of a transcript
func assistantTurns(transcript string) int {
	n := 0
	for _, entry := range strings.Split(transcript, "\n\n") {
		if strings.HasPrefix(entry, "ASSISTANT: ") {
			n++
		}
	}
	return n
}
