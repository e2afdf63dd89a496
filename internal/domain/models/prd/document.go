package prd

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the review state of a PRD
type Status string

const (
	StatusDraft    Status = "draft"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusApproved:
		return true
	}
	return false
}

const (
	// DefaultTemplate is used when a document is created without one
	DefaultTemplate = "standard"

	// DefaultTitle is the title of a document before a title section exists
	DefaultTitle = "Untitled PRD"

	// TitleKey is the section holding the document heading
	TitleKey = "title"
)

// Document is a PRD under construction. Content is the flat body assembled
// from Sections; it is only written independently while Sections is empty.
type Document struct {
	ID         string                 `json:"id" db:"id"`
	Title      string                 `json:"title" db:"title"`
	Content    string                 `json:"content" db:"content"`
	Sections   *Sections              `json:"sections" db:"sections"`
	Status     Status                 `json:"status" db:"status"`
	Template   string                 `json:"template" db:"template"`
	GithubRepo *string                `json:"github_repo,omitempty" db:"github_repo"`
	CreatedBy  *string                `json:"created_by,omitempty" db:"created_by"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" db:"updated_at"`
}

// HasSections reports whether any section has been produced yet
func (d *Document) HasSections() bool {
	return d.Sections.Len() > 0
}

// IsTitleOnly reports whether the only section present is the title.
// The viewer uses this to warn that the PRD has barely started.
func (d *Document) IsTitleOnly() bool {
	return d.Sections.Len() == 1 && d.Sections.Has(TitleKey)
}

// DerivedTitle returns the heading text of the title section, or "" when
// there is none. Only the first line is used and leading '#' markers are
// stripped.
func (d *Document) DerivedTitle(maxLen int) string {
	body, ok := d.Sections.Get(TitleKey)
	if !ok {
		return ""
	}
	return HeadingText(body, maxLen)
}

// HeadingText reduces a markdown heading to plain text capped at maxLen runes
func HeadingText(body string, maxLen int) string {
	line := strings.TrimSpace(body)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.TrimLeft(line, "#"))
	if maxLen > 0 && utf8.RuneCountInString(line) > maxLen {
		line = string([]rune(line)[:maxLen])
	}
	return strings.TrimSpace(line)
}

// ListFilter narrows a document listing
type ListFilter struct {
	Status    *Status
	CreatedBy *string
	Limit     int
	Offset    int
}

// ApplyDefaults fills in paging defaults
func (f *ListFilter) ApplyDefaults() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
