package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"clipforge/logger"
	"clipforge/models"
)

// CreateExportJobRequest is the submission payload: which project to render
// and the full timeline document to render it from.
type CreateExportJobRequest struct {
	ProjectID    string                 `json:"project_id"`
	TimelineData *models.ExportDocument `json:"timeline_data"`
}

// CreateExportHandler accepts a new export job: validates the timeline,
// persists the job row and the timeline document, and wakes the worker.
func (h *Handlers) CreateExportHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Export request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := userID(r)
	if user == "" {
		http.Error(w, "Missing X-User-ID header", http.StatusUnauthorized)
		return
	}

	var req CreateExportJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" {
		http.Error(w, "Missing project_id", http.StatusBadRequest)
		return
	}
	if req.TimelineData == nil {
		http.Error(w, "Missing timeline_data", http.StatusBadRequest)
		return
	}
	if id, found := findTransientRef(req.TimelineData); found {
		logger.Warnf("Rejected export for project %s: media %s uses a browser-local blob URL", req.ProjectID, id)
		http.Error(w, fmt.Sprintf("Media %s uses a browser-local blob: URL; upload it to durable storage first", id), http.StatusBadRequest)
		return
	}

	doc := req.TimelineData
	job := &models.ExportJob{
		ID:        uuid.NewString(),
		UserID:    user,
		ProjectID: req.ProjectID,
		Width:     doc.Project.CanvasSize.Width,
		Height:    doc.Project.CanvasSize.Height,
		FPS:       doc.Project.FPS,
		Duration:  models.TimelineDuration(doc.Tracks),
	}

	ctx := r.Context()
	if err := h.jobs.CreateJob(ctx, job); err != nil {
		logger.Errorf("Failed to create export job: %v", err)
		http.Error(w, "Failed to create export job", http.StatusInternalServerError)
		return
	}

	if err := h.docs.Put(user, job.ID, doc); err != nil {
		// The job row exists but can never render without its document;
		// fail it immediately rather than leaving it queued forever.
		logger.Errorf("Failed to store timeline document for job %s: %v", job.ID, err)
		if markErr := h.jobs.MarkFailed(ctx, job.ID, "failed to store timeline document"); markErr != nil {
			logger.Errorf("Failed to mark job %s failed: %v", job.ID, markErr)
		}
		http.Error(w, "Failed to store timeline document", http.StatusInternalServerError)
		return
	}

	h.worker.Wake()
	logger.Infof("Queued export job %s for user %s, project %s (%.3fs)", job.ID, user, job.ProjectID, job.Duration)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(job); err != nil {
		logger.Errorf("Failed to encode export response: %v", err)
	}
}

// findTransientRef reports the first media asset whose locator is a blob:
// handle. Those only resolve inside the browser that minted them, so they
// are rejected at submission instead of failing later in the worker.
func findTransientRef(doc *models.ExportDocument) (string, bool) {
	for id, asset := range doc.MediaItems {
		if strings.HasPrefix(asset.URL, "blob:") {
			return id, true
		}
	}
	return "", false
}
