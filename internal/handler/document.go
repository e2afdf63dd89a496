package handler

import (
	"log/slog"
	"net/http"

	models "redspec/internal/domain/models/prd"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/httputil"
)

// DocumentHandler handles PRD HTTP requests
type DocumentHandler struct {
	docService prdSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService prdSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// updateDocumentRequest is the PATCH body; github_repo needs tri-state
type updateDocumentRequest struct {
	Title      *string                 `json:"title"`
	Content    *string                 `json:"content"`
	Sections   *models.Sections        `json:"sections"`
	Status     *models.Status          `json:"status"`
	Template   *string                 `json:"template"`
	GithubRepo httputil.OptionalString `json:"github_repo"`
	Metadata   map[string]interface{}  `json:"metadata"`
}

// CreateDocument creates a new PRD
// POST /api/prds
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req prdSvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondParseError(w, err)
		return
	}

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListDocuments lists PRDs newest first
// GET /api/prds?status=&created_by=&limit=&offset=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := models.ListFilter{
		CreatedBy: httputil.QueryString(r, "created_by"),
		Limit:     limit,
		Offset:    offset,
	}
	if status := httputil.QueryString(r, "status"); status != nil {
		s := models.Status(*status)
		filter.Status = &s
	}

	docs, err := h.docService.ListDocuments(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument retrieves a PRD
// GET /api/prds/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// GetDocumentView returns the tabbed viewer model
// GET /api/prds/{id}/view
func (h *DocumentHandler) GetDocumentView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.docService.GetDocumentView(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// UpdateDocument applies a partial update (auto-save)
// PATCH /api/prds/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body updateDocumentRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		respondParseError(w, err)
		return
	}

	req := &prdSvc.UpdateDocumentRequest{
		Title:    body.Title,
		Content:  body.Content,
		Sections: body.Sections,
		Status:   body.Status,
		Template: body.Template,
		GithubRepo: prdSvc.OptionalGithubRepo{
			Present: body.GithubRepo.Present,
			Value:   body.GithubRepo.Value,
		},
		Metadata: body.Metadata,
	}

	doc, err := h.docService.UpdateDocument(r.Context(), id, req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a PRD with its conversation
// DELETE /api/prds/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
