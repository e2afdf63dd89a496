// Package memory provides process-local repository implementations. The
// server falls back to them when no DATABASE_URL is configured, and service
// tests use them in place of Postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"redspec/internal/domain"
	models "redspec/internal/domain/models/prd"
	prdRepo "redspec/internal/domain/repositories/prd"
)

// Store holds documents and turns together so deleting a document can
// cascade to its turns.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]models.Document
	turns map[string][]models.Turn
	seen  map[string]bool
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		docs:  make(map[string]models.Document),
		turns: make(map[string][]models.Turn),
		seen:  make(map[string]bool),
	}
}

// Documents returns a DocumentRepository view of the store
func (s *Store) Documents() prdRepo.DocumentRepository {
	return &documentRepository{store: s}
}

// Turns returns a TurnRepository view of the store
func (s *Store) Turns() prdRepo.TurnRepository {
	return &turnRepository{store: s}
}

type documentRepository struct {
	store *Store
}

func cloneDocument(doc models.Document) models.Document {
	if doc.Sections != nil {
		doc.Sections = doc.Sections.Clone()
	}
	if doc.Metadata != nil {
		meta := make(map[string]interface{}, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		doc.Metadata = meta
	}
	return doc
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.docs[doc.ID]; ok {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("prd '%s' already exists", doc.ID),
			ResourceType: "prd",
			ResourceID:   doc.ID,
		}
	}
	r.store.docs[doc.ID] = cloneDocument(*doc)
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	doc, ok := r.store.docs[id]
	if !ok {
		return nil, fmt.Errorf("prd %s: %w", id, domain.ErrNotFound)
	}
	out := cloneDocument(doc)
	return &out, nil
}

func (r *documentRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Document, error) {
	filter.ApplyDefaults()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := []models.Document{}
	for _, doc := range r.store.docs {
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && (doc.CreatedBy == nil || *doc.CreatedBy != *filter.CreatedBy) {
			continue
		}
		docs = append(docs, cloneDocument(doc))
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if filter.Offset >= len(docs) {
		return []models.Document{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[filter.Offset:end], nil
}

func (r *documentRepository) Update(ctx context.Context, doc *models.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.docs[doc.ID]
	if !ok {
		return fmt.Errorf("prd %s: %w", doc.ID, domain.ErrNotFound)
	}
	updated := cloneDocument(*doc)
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	r.store.docs[doc.ID] = updated
	return nil
}

func (r *documentRepository) UpdateContent(ctx context.Context, doc *models.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.docs[doc.ID]
	if !ok {
		return fmt.Errorf("prd %s: %w", doc.ID, domain.ErrNotFound)
	}
	existing.Title = doc.Title
	existing.Content = doc.Content
	existing.Sections = doc.Sections.Clone()
	existing.UpdatedAt = doc.UpdatedAt
	r.store.docs[doc.ID] = existing
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.docs[id]; !ok {
		return fmt.Errorf("prd %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.docs, id)
	for _, t := range r.store.turns[id] {
		delete(r.store.seen, t.ID)
	}
	delete(r.store.turns, id)
	return nil
}
