package routes

import (
	"net/http"

	"clipforge/docstore"
	"clipforge/jobstore"
	"clipforge/logger"
	"clipforge/storage"
)

// Waker is the trigger surface the submission API needs from the worker: a
// way to request an immediate poll after enqueueing.
type Waker interface {
	Wake()
}

// Handlers bundles the stores the HTTP surface operates on. local is the
// download-serving backend and is nil when outputs live in cloud storage.
type Handlers struct {
	jobs   *jobstore.Store
	docs   *docstore.Store
	local  *storage.LocalBackend
	worker Waker
}

// New builds the HTTP handler set.
func New(jobs *jobstore.Store, docs *docstore.Store, local *storage.LocalBackend, worker Waker) *Handlers {
	return &Handlers{jobs: jobs, docs: docs, local: local, worker: worker}
}

// Register wires every route onto the given mux.
func Register(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("/export", h.CreateExportHandler)
	mux.HandleFunc("/export/status", h.ExportStatusHandler)
	mux.HandleFunc("/export/list", h.ExportListHandler)
	mux.HandleFunc("/webhook/new-job", h.TriggerHandler)
	mux.HandleFunc("/download", h.DownloadHandler)
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/version", VersionHandler)
	logger.Info("HTTP routes registered successfully")
}

// userID extracts the requesting user's identity. Authentication itself is
// handled upstream; here the header only keys ownership paths.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
