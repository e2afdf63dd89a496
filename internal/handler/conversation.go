package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"redspec/internal/config"
	"redspec/internal/domain"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/httputil"
)

// ConversationHandler handles the PRD conversation endpoints
type ConversationHandler struct {
	chatService prdSvc.ConversationService
	logger      *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(chatService prdSvc.ConversationService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// SendMessage runs one exchange
// POST /api/prds/{id}/messages
// Returns 200 with the exchange, 503 with the exchange under "result" when
// it could not be saved yet.
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req prdSvc.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondParseError(w, err)
		return
	}

	result, err := h.chatService.SendMessage(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListTurns returns the conversation in order
// GET /api/prds/{id}/turns?limit=
func (h *ConversationHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit, err := httputil.QueryInt(r, "limit", config.DefaultTurnsPage)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	turns, err := h.chatService.ListTurns(r.Context(), id, limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"turns": turns,
	})
}

// Flush retries saving held turns
// POST /api/prds/{id}/flush
func (h *ConversationHandler) Flush(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	n, err := h.chatService.Flush(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"flushed": n})
}

// RecentConversations lists the latest activity per PRD
// GET /api/conversations/recent?limit=
func (h *ConversationHandler) RecentConversations(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", config.DefaultRecentConversations)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recent, err := h.chatService.RecentConversations(r.Context(), limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, recent)
}

// parseRequest is the body of the stateless preview
type parseRequest struct {
	Text string `json:"text"`
}

// ParsePreview parses tagged text without touching any PRD
// POST /api/parse
func (h *ConversationHandler) ParsePreview(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondParseError(w, err)
		return
	}

	preview, err := h.chatService.ParsePreview(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			httputil.RespondError(w, http.StatusBadRequest, "text is required")
			return
		}
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, preview)
}
