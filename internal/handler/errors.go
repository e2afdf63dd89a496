package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"redspec/internal/domain"
	"redspec/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses. Collaborator
// and persistence failures carry a "kind" member so clients can tell a slow
// model from an outage.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		conflictErr    *domain.ConflictError
		generationErr  *domain.GenerationError
		persistenceErr *domain.PersistenceError
	)

	switch {
	case errors.As(err, &generationErr):
		extras := map[string]interface{}{
			"kind":     string(generationErr.Kind),
			"provider": generationErr.Provider,
		}
		if generationErr.Details != "" {
			extras["details"] = generationErr.Details
		}
		httputil.RespondErrorWithExtras(w, generationErr.StatusCode(), generationErr.Message, extras)
	case errors.As(err, &persistenceErr):
		extras := map[string]interface{}{
			"kind":    "persistence",
			"details": persistenceErr.Err.Error(),
			"pending": persistenceErr.Pending,
		}
		if persistenceErr.Result != nil {
			extras["result"] = persistenceErr.Result
		}
		httputil.RespondErrorWithExtras(w, persistenceErr.StatusCode(), "the exchange was kept but could not be saved; it will be retried", extras)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrUnavailable):
		httputil.RespondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondParseError answers a body that could not be decoded
func respondParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
}
