// Package prd implements the PRD services: document CRUD, the viewer model
// and the conversation loop that grows a document section by section.
package prd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"redspec/internal/config"
	"redspec/internal/domain"
	models "redspec/internal/domain/models/prd"
	prdRepo "redspec/internal/domain/repositories/prd"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/protocol"
	"redspec/internal/templates"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo  prdRepo.DocumentRepository
	sessions prdRepo.SessionStore
	registry *templates.Registry
	analyzer prdSvc.ContentAnalyzer
	logger   *slog.Logger
	locks    *DocumentLocks
	now      func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo prdRepo.DocumentRepository,
	sessions prdRepo.SessionStore,
	registry *templates.Registry,
	analyzer prdSvc.ContentAnalyzer,
	locks *DocumentLocks,
	logger *slog.Logger,
) prdSvc.DocumentService {
	if locks == nil {
		locks = NewDocumentLocks()
	}
	return &documentService{
		docRepo:  docRepo,
		sessions: sessions,
		registry: registry,
		analyzer: analyzer,
		logger:   logger,
		locks:    locks,
		now:      timestamp,
	}
}

// timestamp returns the current time at the precision Postgres stores
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CreateDocument creates a new PRD
func (s *documentService) CreateDocument(ctx context.Context, req *prdSvc.CreateDocumentRequest) (*models.Document, error) {
	if req.Template == "" {
		req.Template = models.DefaultTemplate
	}
	req.Title = strings.TrimSpace(req.Title)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now()
	doc := &models.Document{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Sections:   req.Sections.Clone(),
		Status:     models.StatusDraft,
		Template:   req.Template,
		GithubRepo: req.GithubRepo,
		CreatedBy:  req.CreatedBy,
		Metadata:   req.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applySections(doc)
	if doc.Title == "" {
		doc.Title = models.DefaultTitle
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("prd created",
		"id", doc.ID,
		"template", doc.Template,
		"sections", doc.Sections.Len(),
	)

	return doc, nil
}

// GetDocument retrieves a PRD, overlaid with unsaved conversation state
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.overlaySession(ctx, doc)
	return doc, nil
}

// ListDocuments returns PRDs newest first
func (s *documentService) ListDocuments(ctx context.Context, filter models.ListFilter) ([]models.Document, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, *filter.Status)
	}
	filter.ApplyDefaults()
	return s.docRepo.List(ctx, filter)
}

// UpdateDocument applies a partial update
func (s *documentService) UpdateDocument(ctx context.Context, id string, req *prdSvc.UpdateDocumentRequest) (*models.Document, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		sectioned := doc.HasSections()
		if req.Sections != nil {
			sectioned = req.Sections.Len() > 0
		}
		if sectioned {
			return nil, fmt.Errorf("%w: content is assembled from sections and cannot be written directly", domain.ErrValidation)
		}
	}

	sectionsReplaced := req.Sections != nil
	if sectionsReplaced {
		doc.Sections = req.Sections.Clone()
		if !doc.HasSections() {
			doc.Content = ""
		}
		applySections(doc)
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if doc.Title == "" {
		doc.Title = models.DefaultTitle
	}
	if req.Status != nil {
		doc.Status = *req.Status
	}
	if req.Template != nil {
		doc.Template = *req.Template
	}
	if req.GithubRepo.Present {
		doc.GithubRepo = req.GithubRepo.Value
	}
	if req.Metadata != nil {
		doc.Metadata = req.Metadata
	}
	doc.UpdatedAt = s.now()

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	if sectionsReplaced || req.Title != nil || req.Template != nil {
		s.syncSession(ctx, doc)
	}

	s.logger.Info("prd updated",
		"id", doc.ID,
		"status", doc.Status,
		"sections_replaced", sectionsReplaced,
	)

	return doc, nil
}

// DeleteDocument removes a PRD and its cached session
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to drop session", "id", id, "error", err)
	}

	s.logger.Info("prd deleted", "id", id)
	return nil
}

// applySections recomputes content and, when a title section exists, the title
func applySections(doc *models.Document) {
	if doc.Sections == nil {
		doc.Sections = models.NewSections()
	}
	if !doc.HasSections() {
		return
	}
	doc.Content = protocol.Assemble(doc.Sections)
	if title := doc.DerivedTitle(config.MaxDerivedTitleLength); title != "" {
		doc.Title = title
	}
}

// overlaySession applies held conversation state that is not yet stored
func (s *documentService) overlaySession(ctx context.Context, doc *models.Document) {
	session, err := s.sessions.Get(ctx, doc.ID)
	if err != nil {
		s.logger.Warn("failed to read session", "id", doc.ID, "error", err)
		return
	}
	if session == nil || !session.Dirty() {
		return
	}
	doc.Sections = session.Sections.Clone()
	doc.Title = session.Title
	applySections(doc)
	if session.UpdatedAt.After(doc.UpdatedAt) {
		doc.UpdatedAt = session.UpdatedAt
	}
}

// syncSession keeps a cached session consistent with a direct edit. A clean
// session is dropped and rebuilt on the next exchange; one holding unsaved
// turns takes the new state so the turns are not lost.
func (s *documentService) syncSession(ctx context.Context, doc *models.Document) {
	session, err := s.sessions.Get(ctx, doc.ID)
	if err != nil || session == nil {
		return
	}
	if !session.Dirty() {
		if err := s.sessions.Delete(ctx, doc.ID); err != nil {
			s.logger.Warn("failed to drop session", "id", doc.ID, "error", err)
		}
		return
	}
	session.Title = doc.Title
	session.Template = doc.Template
	session.Sections = doc.Sections.Clone()
	session.UpdatedAt = doc.UpdatedAt
	if err := s.sessions.Put(ctx, session); err != nil {
		s.logger.Warn("failed to update session", "id", doc.ID, "error", err)
	}
}

// validateCreateRequest validates a PRD creation request
func (s *documentService) validateCreateRequest(req *prdSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(0, config.MaxDocumentTitleLength)),
		validation.Field(&req.Template,
			validation.Required,
			validation.Length(1, config.MaxTemplateLength),
			validation.By(s.knownTemplate),
		),
		validation.Field(&req.GithubRepo,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxGithubRepoLength),
			is.URL,
		),
		validation.Field(&req.CreatedBy, validation.Length(1, config.MaxCreatedByLength)),
		validation.Field(&req.Sections, validation.By(validSections)),
	)
}

// validateUpdateRequest validates a partial update
func (s *documentService) validateUpdateRequest(req *prdSvc.UpdateDocumentRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(0, config.MaxDocumentTitleLength)),
		validation.Field(&req.Status, validation.By(validStatus)),
		validation.Field(&req.Template,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxTemplateLength),
			validation.By(s.knownTemplate),
		),
		validation.Field(&req.Sections, validation.By(validSections)),
	); err != nil {
		return err
	}

	if req.GithubRepo.Present && req.GithubRepo.Value != nil {
		return validation.Validate(*req.GithubRepo.Value,
			validation.Required,
			validation.Length(1, config.MaxGithubRepoLength),
			is.URL,
		)
	}
	return nil
}

func (s *documentService) knownTemplate(value interface{}) error {
	id, ok := derefString(value)
	if !ok || id == "" {
		return nil
	}
	if !s.registry.Has(id) {
		return fmt.Errorf("unknown template %q", id)
	}
	return nil
}

func validStatus(value interface{}) error {
	status, _ := value.(*models.Status)
	if status == nil || status.Valid() {
		return nil
	}
	return fmt.Errorf("must be one of draft, in_review, approved")
}

func validSections(value interface{}) error {
	sections, _ := value.(*models.Sections)
	for _, key := range sections.Keys() {
		if len(key) > config.MaxSectionKeyLength || !protocol.ValidKey(key) {
			return fmt.Errorf("invalid section key %q", key)
		}
	}
	return nil
}

func derefString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}
