package prd

import (
	"context"

	"redspec/internal/domain/models/prd"
	"redspec/internal/templates"
)

// DocumentService handles PRD business logic outside the conversation
type DocumentService interface {
	// CreateDocument creates an empty PRD, optionally seeded with sections
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*prd.Document, error)

	// GetDocument retrieves a PRD by ID
	GetDocument(ctx context.Context, id string) (*prd.Document, error)

	// ListDocuments returns PRDs newest first
	ListDocuments(ctx context.Context, filter prd.ListFilter) ([]prd.Document, error)

	// UpdateDocument applies a partial update (auto-save)
	// Replacing sections recomputes content and title and drops the cached
	// session. Raw content may only be written while the PRD has no sections.
	UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*prd.Document, error)

	// DeleteDocument removes a PRD, its turns and its cached session
	DeleteDocument(ctx context.Context, id string) error

	// GetDocumentView returns the data the tabbed viewer renders
	GetDocumentView(ctx context.Context, id string) (*DocumentView, error)
}

// CreateDocumentRequest is the DTO for creating a PRD
type CreateDocumentRequest struct {
	Title      string                 `json:"title"`
	Template   string                 `json:"template"`
	GithubRepo *string                `json:"github_repo,omitempty"`
	CreatedBy  *string                `json:"created_by,omitempty"`
	Sections   *prd.Sections          `json:"sections,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// UpdateDocumentRequest is the DTO for a partial PRD update.
// Nil fields are left unchanged.
type UpdateDocumentRequest struct {
	Title      *string                `json:"title,omitempty"`
	Content    *string                `json:"content,omitempty"`
	Sections   *prd.Sections          `json:"sections,omitempty"`
	Status     *prd.Status            `json:"status,omitempty"`
	Template   *string                `json:"template,omitempty"`
	GithubRepo OptionalGithubRepo     // no json tag - mapped from the handler DTO
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// OptionalGithubRepo tracks tri-state semantics for github_repo updates (RFC 7396 PATCH).
// This is transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"url": field has value
type OptionalGithubRepo struct {
	Present bool
	Value   *string
}

// DocumentView is the tabbed viewer model of one PRD
type DocumentView struct {
	Document  *prd.Document       `json:"prd"`
	Sections  []SectionView       `json:"sections"`
	Template  *templates.Template `json:"template,omitempty"`
	Missing   []string            `json:"missing_sections"`
	Progress  int                 `json:"progress"`
	WordCount int                 `json:"word_count"`
	TitleOnly bool                `json:"title_only"`
}

// SectionView is one tab of the viewer
type SectionView struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	WordCount int    `json:"word_count"`
	Planned   bool   `json:"planned"`
}
