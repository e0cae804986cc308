package routes

import (
	"encoding/json"
	"net/http"

	"clipforge/logger"
)

// TriggerHandler requests an immediate worker poll. External systems call
// this after inserting jobs out of band, instead of waiting for the next
// timer tick.
func (h *Handlers) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Trigger request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.worker.Wake()
	logger.Debug("Worker wake requested via webhook")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "triggered"})
}
