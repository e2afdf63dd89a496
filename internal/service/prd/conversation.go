package prd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"redspec/internal/config"
	"redspec/internal/domain"
	models "redspec/internal/domain/models/prd"
	"redspec/internal/domain/repositories"
	prdRepo "redspec/internal/domain/repositories/prd"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/metrics"
	"redspec/internal/protocol"
	"redspec/internal/service/generation"
	"redspec/internal/templates"
)

// FallbackReply is stored as the assistant body when the collaborator
// returned nothing usable.
const FallbackReply = "I received your message but had trouble generating a response."

// ConversationDeps groups the collaborators of the conversation service
type ConversationDeps struct {
	Documents  prdRepo.DocumentRepository
	Turns      prdRepo.TurnRepository
	Sessions   prdRepo.SessionStore
	TxManager  repositories.TransactionManager
	Generator  generation.Generator
	Registry   *templates.Registry
	Heuristics protocol.Heuristics
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	// Locks should be shared with the DocumentService; nil creates a private set
	Locks *DocumentLocks
}

// conversationService implements the ConversationService interface
type conversationService struct {
	docRepo    prdRepo.DocumentRepository
	turnRepo   prdRepo.TurnRepository
	sessions   prdRepo.SessionStore
	txManager  repositories.TransactionManager
	generator  generation.Generator
	registry   *templates.Registry
	heuristics protocol.Heuristics
	metrics    *metrics.Metrics
	logger     *slog.Logger
	locks      *DocumentLocks
	now        func() time.Time
}

// NewConversationService creates a new conversation service
func NewConversationService(deps ConversationDeps) prdSvc.ConversationService {
	heuristics := deps.Heuristics
	if heuristics.MaxOptionLineLength == 0 {
		heuristics = protocol.DefaultHeuristics
	}
	locks := deps.Locks
	if locks == nil {
		locks = NewDocumentLocks()
	}
	txManager := deps.TxManager
	if txManager == nil {
		txManager = repositories.NoopTransactionManager{}
	}
	return &conversationService{
		docRepo:    deps.Documents,
		turnRepo:   deps.Turns,
		sessions:   deps.Sessions,
		txManager:  txManager,
		generator:  deps.Generator,
		registry:   deps.Registry,
		heuristics: heuristics,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		locks:      locks,
		now:        timestamp,
	}
}

// SendMessage runs one exchange. When persistence fails the returned result
// is still valid and is also carried by the *domain.PersistenceError.
func (s *conversationService) SendMessage(ctx context.Context, documentID string, req *prdSvc.SendMessageRequest) (*prdSvc.ExchangeResult, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Message, validation.Required, validation.RuneLength(1, config.MaxMessageLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locks.lock(documentID)
	defer unlock()

	doc, session, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Held turns go first so the new exchange lands after them
	if session.Dirty() {
		if _, err := s.flush(ctx, doc, session); err != nil {
			s.logger.Warn("held turns still unsaved", "prd_id", documentID, "pending", len(session.Pending), "error", err)
		}
	}

	userTurn := models.Turn{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Role:       models.RoleUser,
		Content:    req.Message,
		Timestamp:  s.now(),
	}
	if last := session.Log().Last(); last != nil {
		userTurn.Timestamp = after(userTurn.Timestamp, last.Timestamp)
	}

	tmpl := s.template(session.Template)
	genReq := &generation.Request{
		SystemPrompt: generation.BuildSystemPrompt(tmpl),
		Transcript:   session.Log().Transcript(req.Message),
		Model:        req.Model,
		Template:     tmpl,
	}

	started := time.Now()
	resp, err := s.generator.Generate(ctx, genReq)
	elapsed := time.Since(started)
	if err != nil {
		genErr := generation.Classify(ctx, s.generator.Name(), err)
		s.metrics.ObserveGeneration(s.generator.Name(), string(genErr.Kind), elapsed)
		s.logger.Error("generation failed",
			"prd_id", documentID,
			"generator", s.generator.Name(),
			"kind", genErr.Kind,
			"error", genErr,
		)
		return nil, genErr
	}
	s.metrics.ObserveGeneration(s.generator.Name(), "ok", elapsed)

	body := resp.Text
	if strings.TrimSpace(body) == "" {
		body = FallbackReply
	}
	parsed := s.heuristics.Parse(body)
	s.metrics.ObserveParse(parsed.Sections.Len(), parsed.HasQuestion(), parsed.Question.HasOptions())

	session.Sections = session.Sections.Clone().Merge(parsed.Sections)

	assistantTurn := models.Turn{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Role:       models.RoleAssistant,
		Content:    body,
		Timestamp:  s.now(),
		Question:   parsed.Question,
		Metadata: &models.TurnMetadata{
			Question:        parsed.Question,
			Generator:       resp.Provider,
			Model:           resp.Model,
			SectionsUpdated: parsed.Sections.Keys(),
			DurationMS:      elapsed.Milliseconds(),
		},
	}
	assistantTurn.Timestamp = after(assistantTurn.Timestamp, userTurn.Timestamp)

	doc.Sections = session.Sections.Clone()
	applySections(doc)
	if doc.Title == "" {
		doc.Title = models.DefaultTitle
	}
	doc.UpdatedAt = assistantTurn.Timestamp

	session.Title = doc.Title
	session.Turns = append(session.Turns, userTurn, assistantTurn)
	session.Pending = append(session.Pending, userTurn, assistantTurn)
	session.UpdatedAt = doc.UpdatedAt

	_, persistErr := s.flush(ctx, doc, session)

	userTurn.Display = protocol.DisplayText(userTurn.Content, nil)
	assistantTurn.Display = protocol.DisplayText(assistantTurn.Content, assistantTurn.Question)
	result := &prdSvc.ExchangeResult{
		Document:        doc,
		UserTurn:        userTurn,
		AssistantTurn:   assistantTurn,
		Question:        parsed.Question,
		SectionsUpdated: parsed.Sections.Keys(),
		Persisted:       persistErr == nil,
	}
	if result.SectionsUpdated == nil {
		result.SectionsUpdated = []string{}
	}

	s.logger.Info("exchange completed",
		"prd_id", documentID,
		"generator", resp.Provider,
		"sections_updated", result.SectionsUpdated,
		"has_question", parsed.HasQuestion(),
		"duration_ms", elapsed.Milliseconds(),
		"persisted", result.Persisted,
	)

	if persistErr != nil {
		return result, &domain.PersistenceError{
			Operation: "save_exchange",
			Pending:   len(session.Pending),
			Result:    result,
			Err:       persistErr,
		}
	}
	return result, nil
}

// ListTurns returns the conversation in order, including held turns.
// limit <= 0 returns every turn.
func (s *conversationService) ListTurns(ctx context.Context, documentID string, limit int) ([]models.Turn, error) {
	if limit > config.MaxTurnsPage {
		limit = config.MaxTurnsPage
	}
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	var turns []models.Turn
	session := s.cachedSession(ctx, documentID)
	if session != nil && session.Dirty() {
		turns = session.Log().All()
		if limit > 0 && len(turns) > limit {
			turns = turns[:limit]
		}
	} else {
		var err error
		turns, err = s.turnRepo.ListByDocument(ctx, documentID, limit)
		if err != nil {
			return nil, err
		}
	}

	for i := range turns {
		turns[i].Display = protocol.DisplayText(turns[i].Content, turns[i].Question)
	}
	return turns, nil
}

// RecentConversations lists the latest activity per PRD
func (s *conversationService) RecentConversations(ctx context.Context, limit int) ([]models.RecentConversation, error) {
	if limit <= 0 {
		limit = config.DefaultRecentConversations
	}
	if limit > config.MaxRecentConversations {
		limit = config.MaxRecentConversations
	}

	recent, err := s.turnRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		msg := recent[i].LastMessage
		recent[i].LastMessage = protocol.DisplayText(msg, s.heuristics.Parse(msg).Question)
	}
	return recent, nil
}

// Flush writes held turns and the document state they produced
func (s *conversationService) Flush(ctx context.Context, documentID string) (int, error) {
	unlock := s.locks.lock(documentID)
	defer unlock()

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return 0, err
	}
	session := s.cachedSession(ctx, documentID)
	if session == nil || !session.Dirty() {
		return 0, nil
	}

	applySession(doc, session)
	n, err := s.flush(ctx, doc, session)
	if err != nil {
		return 0, &domain.PersistenceError{
			Operation: "flush",
			Pending:   len(session.Pending),
			Err:       err,
		}
	}
	return n, nil
}

// ParsePreview parses text without touching any state
func (s *conversationService) ParsePreview(ctx context.Context, text string) (*prdSvc.ParsePreview, error) {
	if err := validation.Validate(text, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: text: %v", domain.ErrValidation, err)
	}
	return prdSvc.NewParsePreview(text, s.heuristics.Parse(text)), nil
}

// load returns the document and its working session, hydrating the session
// from the stored turns when none is cached.
func (s *conversationService) load(ctx context.Context, documentID string) (*models.Document, *models.Session, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	if session := s.cachedSession(ctx, documentID); session != nil {
		if session.Sections == nil {
			session.Sections = models.NewSections()
		}
		if session.Dirty() {
			applySession(doc, session)
		}
		return doc, session, nil
	}

	turns, err := s.turnRepo.ListByDocument(ctx, documentID, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("load turns: %w", err)
	}
	session := &models.Session{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Template:   doc.Template,
		Sections:   doc.Sections.Clone(),
		Turns:      turns,
		UpdatedAt:  doc.UpdatedAt,
	}
	return doc, session, nil
}

// cachedSession reads the session store, treating failures as a miss
func (s *conversationService) cachedSession(ctx context.Context, documentID string) *models.Session {
	session, err := s.sessions.Get(ctx, documentID)
	if err != nil {
		s.logger.Warn("session store read failed", "prd_id", documentID, "error", err)
		return nil
	}
	return session
}

// flush writes the held turns and document content in one transaction, then
// stores the session. On failure the turns stay held in the session.
func (s *conversationService) flush(ctx context.Context, doc *models.Document, session *models.Session) (int, error) {
	pending := len(session.Pending)
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.turnRepo.CreateBatch(ctx, session.Pending); err != nil {
			return fmt.Errorf("create turns: %w", err)
		}
		if err := s.docRepo.UpdateContent(ctx, doc); err != nil {
			return fmt.Errorf("update prd: %w", err)
		}
		return nil
	})

	if err != nil {
		s.metrics.PersistenceFailed("save_exchange")
		s.logger.Error("failed to persist exchange",
			"prd_id", doc.ID,
			"pending", pending,
			"error", err,
		)
	} else {
		session.Pending = nil
		s.metrics.PendingFlushed(pending)
	}

	if putErr := s.sessions.Put(ctx, session); putErr != nil {
		s.logger.Warn("session store write failed", "prd_id", doc.ID, "error", putErr)
		if err != nil {
			return 0, errors.Join(err, putErr)
		}
	}
	if err != nil {
		return 0, err
	}
	return pending, nil
}

// template returns the registered template, or nil
func (s *conversationService) template(id string) *templates.Template {
	if s.registry == nil {
		return nil
	}
	tmpl, err := s.registry.Get(id)
	if err != nil {
		return nil
	}
	return tmpl
}

// after returns t, moved past prev when needed so turn order is strict
func after(t, prev time.Time) time.Time {
	if t.After(prev) {
		return t
	}
	return prev.Add(time.Microsecond)
}

// applySession copies held conversation state onto the stored document
func applySession(doc *models.Document, session *models.Session) {
	doc.Sections = session.Sections.Clone()
	if session.Title != "" {
		doc.Title = session.Title
	}
	applySections(doc)
	if session.UpdatedAt.After(doc.UpdatedAt) {
		doc.UpdatedAt = session.UpdatedAt
	}
}
