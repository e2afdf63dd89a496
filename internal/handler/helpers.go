package handler

import (
	"net/http"

	"redspec/internal/httputil"
)

// pathID returns the {id} path value, answering 400 when it is missing
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "PRD ID is required")
		return "", false
	}
	return id, true
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
