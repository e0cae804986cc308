package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"clipforge/logger"
)

// ExportStatusHandler returns one export job by id.
func (h *Handlers) ExportStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Export status request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		logger.Errorf("Failed to load job %s: %v", id, err)
		http.Error(w, "Failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, fmt.Sprintf("Job %s not found", id), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(job); err != nil {
		logger.Errorf("Failed to encode status response: %v", err)
	}
}
