package prd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	models "redspec/internal/domain/models/prd"
	prdRepo "redspec/internal/domain/repositories/prd"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/metrics"
	"redspec/internal/repository/memory"
	"redspec/internal/service/generation"
	"redspec/internal/templates"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedGenerator replies with queued texts in order and records requests
type scriptedGenerator struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []*generation.Request

	// When set, Generate signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(ctx context.Context, req *generation.Request) (*generation.Response, error) {
	if g.started != nil {
		g.started <- struct{}{}
		<-g.release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	text := g.replies[0]
	g.replies = g.replies[1:]
	return &generation.Response{Text: text, Provider: "scripted", Model: "script-1"}, nil
}

func (g *scriptedGenerator) lastRequest() *generation.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

// flakyTurns fails CreateBatch while failing is set
type flakyTurns struct {
	prdRepo.TurnRepository
	mu      sync.Mutex
	failing bool
}

func (f *flakyTurns) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *flakyTurns) CreateBatch(ctx context.Context, turns []models.Turn) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errors.New("connection refused")
	}
	return f.TurnRepository.CreateBatch(ctx, turns)
}

type fixture struct {
	store     *memory.Store
	sessions  prdRepo.SessionStore
	turns     *flakyTurns
	generator *scriptedGenerator
	metrics   *metrics.Metrics
	locks     *DocumentLocks
	documents prdSvc.DocumentService
	chat      prdSvc.ConversationService
}

func newFixture(t *testing.T, replies ...string) *fixture {
	t.Helper()

	registry, err := templates.NewRegistry()
	require.NoError(t, err)

	f := &fixture{
		store:     memory.NewStore(),
		sessions:  memory.NewSessionStore(),
		generator: &scriptedGenerator{replies: replies},
		metrics:   metrics.New(),
	}
	f.turns = &flakyTurns{TurnRepository: f.store.Turns()}
	logger := discardLogger()

	f.locks = NewDocumentLocks()
	f.documents = NewDocumentService(f.store.Documents(), f.sessions, registry, NewContentAnalyzer(), f.locks, logger)
	f.chat = NewConversationService(ConversationDeps{
		Documents: f.store.Documents(),
		Turns:     f.turns,
		Sessions:  f.sessions,
		Generator: f.generator,
		Registry:  registry,
		Metrics:   f.metrics,
		Logger:    logger,
		Locks:     f.locks,
	})
	return f
}

func (f *fixture) createDocument(t *testing.T) *models.Document {
	t.Helper()
	doc, err := f.documents.CreateDocument(context.Background(), &prdSvc.CreateDocumentRequest{})
	require.NoError(t, err)
	return doc
}
