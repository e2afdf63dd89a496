package handler

import (
	"net/http"

	"redspec/internal/metrics"
)

// Handlers groups everything the router serves
type Handlers struct {
	Documents     *DocumentHandler
	Conversations *ConversationHandler
	Templates     *TemplatesHandler
	Metrics       *metrics.Metrics
}

// NewRouter registers every route (Go 1.22+ method patterns)
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthCheck)
	mux.Handle("GET /metrics", h.Metrics.Handler())

	mux.HandleFunc("GET /api/templates", h.Templates.ListTemplates)

	// PRD routes
	mux.HandleFunc("GET /api/prds", h.Documents.ListDocuments)
	mux.HandleFunc("POST /api/prds", h.Documents.CreateDocument)
	mux.HandleFunc("GET /api/prds/{id}", h.Documents.GetDocument)
	mux.HandleFunc("PATCH /api/prds/{id}", h.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /api/prds/{id}", h.Documents.DeleteDocument)
	mux.HandleFunc("GET /api/prds/{id}/view", h.Documents.GetDocumentView)

	// Conversation routes
	mux.HandleFunc("GET /api/prds/{id}/turns", h.Conversations.ListTurns)
	mux.HandleFunc("POST /api/prds/{id}/messages", h.Conversations.SendMessage)
	mux.HandleFunc("POST /api/prds/{id}/flush", h.Conversations.Flush)
	mux.HandleFunc("GET /api/conversations/recent", h.Conversations.RecentConversations)
	mux.HandleFunc("POST /api/parse", h.Conversations.ParsePreview)

	return mux
}
