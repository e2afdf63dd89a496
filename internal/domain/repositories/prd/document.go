package prd

import (
	"context"

	"redspec/internal/domain/models/prd"
)

// DocumentRepository defines data access operations for PRDs
type DocumentRepository interface {
	// Create inserts a new document and fills in ID and timestamps
	Create(ctx context.Context, doc *prd.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*prd.Document, error)

	// List returns documents matching the filter, newest first
	List(ctx context.Context, filter prd.ListFilter) ([]prd.Document, error)

	// Update writes every mutable column of doc (last write wins)
	Update(ctx context.Context, doc *prd.Document) error

	// UpdateContent writes title, content and sections only.
	// Used after an exchange so status edits made meanwhile survive.
	UpdateContent(ctx context.Context, doc *prd.Document) error

	// Delete removes a document and, by cascade, its turns
	Delete(ctx context.Context, id string) error
}
