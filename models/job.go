package models

import "time"

// Job lifecycle. A job is created queued by the submission API, claimed by
// the worker (queued -> processing), and ends in exactly one of completed or
// failed. There are no retries; failed is terminal.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ExportJob is one durable render request tracked through its lifecycle.
// After creation it is mutated exclusively by the worker.
type ExportJob struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	ProjectID    string     `json:"project_id"`
	Status       string     `json:"status"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	FPS          int        `json:"fps"`
	Duration     float64    `json:"duration"` // declared output duration, seconds
	Progress     int        `json:"progress"` // 0-100; 100 only on completion
	DownloadURL  string     `json:"download_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
