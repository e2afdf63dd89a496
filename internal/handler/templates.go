package handler

import (
	"log/slog"
	"net/http"

	"redspec/internal/httputil"
	"redspec/internal/templates"
)

// TemplatesHandler serves the PRD template catalogue
type TemplatesHandler struct {
	registry *templates.Registry
	logger   *slog.Logger
}

// NewTemplatesHandler creates a new templates handler
func NewTemplatesHandler(registry *templates.Registry, logger *slog.Logger) *TemplatesHandler {
	return &TemplatesHandler{
		registry: registry,
		logger:   logger,
	}
}

// ListTemplates returns every template with its section plan
// GET /api/templates
func (h *TemplatesHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.List())
}
