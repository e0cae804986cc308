package routes

import (
	"encoding/json"
	"net/http"

	"clipforge/logger"
	"clipforge/models"
)

// ExportListResponse wraps a user's jobs, newest first.
type ExportListResponse struct {
	Jobs []models.ExportJob `json:"jobs"`
}

// ExportListHandler lists all export jobs owned by one user. The user comes
// from the query parameter, falling back to the identity header.
func (h *Handlers) ExportListHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Export list request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := r.URL.Query().Get("user")
	if user == "" {
		user = userID(r)
	}
	if user == "" {
		http.Error(w, "Missing user parameter", http.StatusBadRequest)
		return
	}

	jobs, err := h.jobs.ListJobsForUser(r.Context(), user)
	if err != nil {
		logger.Errorf("Failed to list jobs for user %s: %v", user, err)
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.ExportJob{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ExportListResponse{Jobs: jobs}); err != nil {
		logger.Errorf("Failed to encode list response: %v", err)
	}
}
