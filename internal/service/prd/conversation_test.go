package prd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redspec/internal/domain"
	models "redspec/internal/domain/models/prd"
	prdSvc "redspec/internal/domain/services/prd"
)

const (
	replyOne = `Great idea.
[PRD_SECTION:title]# Smart Checkout[/PRD_SECTION]
[PRD_SECTION:problem_statement]Carts are abandoned at payment.[/PRD_SECTION]
[QUESTION]Who is the primary user?
[OPTIONS]
- Shoppers
- Store admins
[/OPTIONS]
[/QUESTION]`

	replyTwo = `[PRD_SECTION:user_stories_personas]As a shopper I pay in one tap.[/PRD_SECTION]
[QUESTION]Which platforms are in scope?[/QUESTION]`

	replyThree = `[PRD_SECTION:problem_statement]Carts are abandoned at the payment step on mobile.[/PRD_SECTION]
[PRD_SECTION:scope]Mobile web only.[/PRD_SECTION]`
)

func send(t *testing.T, f *fixture, docID, msg string) *prdSvc.ExchangeResult {
	t.Helper()
	result, err := f.chat.SendMessage(context.Background(), docID, &prdSvc.SendMessageRequest{Message: msg})
	require.NoError(t, err)
	return result
}

func TestSendMessage_ThreeTurns(t *testing.T) {
	f := newFixture(t, replyOne, replyTwo, replyThree)
	ctx := context.Background()
	doc := f.createDocument(t)

	first := send(t, f, doc.ID, "I want faster checkout")
	require.NotNil(t, first.Question)
	assert.Equal(t, "Who is the primary user?", first.Question.Text)
	assert.Equal(t, []string{"Shoppers", "Store admins"}, first.Question.Options)
	assert.Equal(t, []string{"title", "problem_statement"}, first.SectionsUpdated)
	assert.Equal(t, "Smart Checkout", first.Document.Title)
	assert.True(t, first.Persisted)
	assert.Equal(t, "Who is the primary user?", first.AssistantTurn.Display)
	assert.True(t, first.AssistantTurn.Timestamp.After(first.UserTurn.Timestamp))

	second := send(t, f, doc.ID, "Shoppers")
	require.NotNil(t, second.Question)
	assert.Empty(t, second.Question.Options)

	// history is resent with every message
	transcript := f.generator.lastRequest().Transcript
	assert.True(t, strings.HasPrefix(transcript, "USER: I want faster checkout\n\nASSISTANT: Great idea."), transcript)
	assert.True(t, strings.HasSuffix(transcript, "USER: Shoppers"))

	third := send(t, f, doc.ID, "Mobile web")
	assert.Nil(t, third.Question)

	stored, err := f.documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smart Checkout", stored.Title)
	assert.Equal(t, []string{"title", "problem_statement", "user_stories_personas", "scope"}, stored.Sections.Keys())

	body, _ := stored.Sections.Get("problem_statement")
	assert.Equal(t, "Carts are abandoned at the payment step on mobile.", body)
	assert.Equal(t, strings.Join([]string{
		"# Smart Checkout",
		"Carts are abandoned at the payment step on mobile.",
		"Mobile web only.",
		"As a shopper I pay in one tap.",
	}, "\n\n"), stored.Content)

	turns, err := f.chat.ListTurns(ctx, doc.ID, 0)
	require.NoError(t, err)
	require.Len(t, turns, 6)
	roles := make([]models.Role, len(turns))
	for i, turn := range turns {
		roles[i] = turn.Role
	}
	assert.Equal(t, []models.Role{
		models.RoleUser, models.RoleAssistant,
		models.RoleUser, models.RoleAssistant,
		models.RoleUser, models.RoleAssistant,
	}, roles)
	assert.Equal(t, "Mobile web", turns[4].Content)

	expected := `
# HELP redspec_generation_requests_total Generation requests by provider and outcome (ok, timeout, unavailable, failed).
# TYPE redspec_generation_requests_total counter
redspec_generation_requests_total{outcome="ok",provider="scripted"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "redspec_generation_requests_total"))
}

func TestSendMessage_GenerationFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDocument(t)

	f.generator.err = domain.NewGenerationError(domain.GenerationUnavailable, "scripted", "down", errors.New("dial tcp: refused"))

	_, err := f.chat.SendMessage(ctx, doc.ID, &prdSvc.SendMessageRequest{Message: "hello"})
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, domain.GenerationUnavailable, genErr.Kind)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))

	turns, err := f.chat.ListTurns(ctx, doc.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, turns)

	session, err := f.sessions.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSendMessage_UnclassifiedErrorIsFailed(t *testing.T) {
	f := newFixture(t)
	doc := f.createDocument(t)
	f.generator.err = errors.New("malformed response")

	_, err := f.chat.SendMessage(context.Background(), doc.ID, &prdSvc.SendMessageRequest{Message: "hello"})
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, domain.GenerationFailed, genErr.Kind)
}

func TestSendMessage_EmptyReplyUsesFallback(t *testing.T) {
	f := newFixture(t, "   ")
	doc := f.createDocument(t)

	result := send(t, f, doc.ID, "hello")
	assert.Equal(t, FallbackReply, result.AssistantTurn.Content)
	assert.Empty(t, result.SectionsUpdated)
}

func TestSendMessage_UntaggedReplyIsKeptVerbatim(t *testing.T) {
	f := newFixture(t, "Just chatting, no tags here.")
	doc := f.createDocument(t)

	result := send(t, f, doc.ID, "hello")
	assert.Equal(t, "Just chatting, no tags here.", result.AssistantTurn.Content)
	assert.Equal(t, "Just chatting, no tags here.", result.AssistantTurn.Display)
	assert.Equal(t, models.DefaultTitle, result.Document.Title)
}

func TestSendMessage_Validation(t *testing.T) {
	f := newFixture(t)
	doc := f.createDocument(t)

	for _, msg := range []string{"", "   \n"} {
		_, err := f.chat.SendMessage(context.Background(), doc.ID, &prdSvc.SendMessageRequest{Message: msg})
		assert.True(t, errors.Is(err, domain.ErrValidation), "message %q", msg)
	}
}

func TestSendMessage_UnknownDocument(t *testing.T) {
	f := newFixture(t, replyOne)
	_, err := f.chat.SendMessage(context.Background(), "missing", &prdSvc.SendMessageRequest{Message: "hi"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSendMessage_PersistenceFailureThenFlush(t *testing.T) {
	f := newFixture(t, replyOne, replyTwo)
	ctx := context.Background()
	doc := f.createDocument(t)

	f.turns.setFailing(true)
	result, err := f.chat.SendMessage(ctx, doc.ID, &prdSvc.SendMessageRequest{Message: "I want faster checkout"})

	var persistErr *domain.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, 2, persistErr.Pending)
	assert.Same(t, result, persistErr.Result)
	assert.False(t, result.Persisted)
	assert.Equal(t, "Smart Checkout", result.Document.Title)

	// held turns are visible even though nothing was written
	turns, err := f.chat.ListTurns(ctx, doc.ID, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 2)

	stored, err := f.store.Documents().GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTitle, stored.Title)

	// reads overlay the held state
	overlaid, err := f.documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smart Checkout", overlaid.Title)

	_, err = f.chat.Flush(ctx, doc.ID)
	require.True(t, errors.As(err, &persistErr))

	f.turns.setFailing(false)
	n, err := f.chat.Flush(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.chat.Flush(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stored, err = f.store.Documents().GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smart Checkout", stored.Title)

	persisted, err := f.store.Turns().ListByDocument(ctx, doc.ID, 0)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}

func TestSendMessage_HeldTurnsFlushOnNextExchange(t *testing.T) {
	f := newFixture(t, replyOne, replyTwo)
	ctx := context.Background()
	doc := f.createDocument(t)

	f.turns.setFailing(true)
	_, err := f.chat.SendMessage(ctx, doc.ID, &prdSvc.SendMessageRequest{Message: "first"})
	require.Error(t, err)

	f.turns.setFailing(false)
	send(t, f, doc.ID, "second")

	persisted, err := f.store.Turns().ListByDocument(ctx, doc.ID, 0)
	require.NoError(t, err)
	require.Len(t, persisted, 4)
	assert.Equal(t, "first", persisted[0].Content)
	assert.Equal(t, "second", persisted[2].Content)

	session, err := f.sessions.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, session.Dirty())
}

func TestSendMessage_ConcurrentMessagesAreSerialised(t *testing.T) {
	const n = 5
	replies := make([]string, n)
	for i := range replies {
		replies[i] = fmt.Sprintf("[PRD_SECTION:note_%d]body %d[/PRD_SECTION]", i, i)
	}
	f := newFixture(t, replies...)
	ctx := context.Background()
	doc := f.createDocument(t)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.chat.SendMessage(ctx, doc.ID, &prdSvc.SendMessageRequest{Message: fmt.Sprintf("msg %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	turns, err := f.chat.ListTurns(ctx, doc.ID, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 2*n)

	stored, err := f.documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored.Sections.Len())
}

func TestListTurns_Limit(t *testing.T) {
	f := newFixture(t, replyOne, replyTwo)
	ctx := context.Background()
	doc := f.createDocument(t)
	send(t, f, doc.ID, "one")
	send(t, f, doc.ID, "two")

	turns, err := f.chat.ListTurns(ctx, doc.ID, 3)
	require.NoError(t, err)
	assert.Len(t, turns, 3)
}

func TestRecentConversations(t *testing.T) {
	f := newFixture(t, replyOne)
	ctx := context.Background()
	doc := f.createDocument(t)
	send(t, f, doc.ID, "hello")

	recent, err := f.chat.RecentConversations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, doc.ID, recent[0].DocumentID)
	assert.Equal(t, models.RoleAssistant, recent[0].LastMessageRole)
	assert.Equal(t, "Who is the primary user?", recent[0].LastMessage)
}

func TestParsePreview(t *testing.T) {
	f := newFixture(t)

	preview, err := f.chat.ParsePreview(context.Background(), replyOne)
	require.NoError(t, err)
	assert.Equal(t, 2, preview.Sections.Len())
	assert.Equal(t, "# Smart Checkout\n\nCarts are abandoned at payment.", preview.Assembled)
	assert.Equal(t, "Who is the primary user?", preview.Display)

	_, err = f.chat.ParsePreview(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
