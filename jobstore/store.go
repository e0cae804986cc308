package jobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"clipforge/models"
)

// Store persists export jobs in SQLite. The queued -> processing transition
// is a single conditional update so concurrent workers can never claim the
// same job twice.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS export_jobs (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	project_id    TEXT NOT NULL,
	status        TEXT NOT NULL,
	width         INTEGER NOT NULL,
	height        INTEGER NOT NULL,
	fps           INTEGER NOT NULL,
	duration      REAL NOT NULL,
	progress      INTEGER NOT NULL DEFAULT 0,
	download_url  TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	completed_at  TEXT
);
CREATE INDEX IF NOT EXISTS idx_export_jobs_queue ON export_jobs(status, created_at);
`

// Open initializes or connects to the job database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// busy_timeout must ride the DSN so it applies to every pooled
	// connection, not just the one that ran the PRAGMA below.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateJob inserts a new job row. The caller sets ID, UserID, ProjectID and
// geometry; status and progress are forced to queued/0 and CreatedAt is
// stamped here.
func (s *Store) CreateJob(ctx context.Context, job *models.ExportJob) error {
	job.Status = models.StatusQueued
	job.Progress = 0
	job.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO export_jobs
			(id, user_id, project_id, status, width, height, fps, duration, progress, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.UserID, job.ProjectID, job.Status,
		job.Width, job.Height, job.FPS, job.Duration, job.Progress,
		job.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.ID, err)
	}
	return nil
}

// ClaimNextQueued atomically transitions the oldest queued job to processing
// with progress reset to 0 and returns it. Returns (nil, nil) when there is
// nothing to claim or another worker won the race.
func (s *Store) ClaimNextQueued(ctx context.Context) (*models.ExportJob, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE export_jobs
		 SET status = ?, progress = 0
		 WHERE id = (
			SELECT id FROM export_jobs
			WHERE status = ?
			ORDER BY created_at, id
			LIMIT 1
		 ) AND status = ?
		 RETURNING id, user_id, project_id, status, width, height, fps, duration,
			progress, download_url, error_message, created_at, completed_at`,
		models.StatusProcessing, models.StatusQueued, models.StatusQueued,
	)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim queued job: %w", err)
	}
	return job, nil
}

// UpdateProgress sets the progress column unconditionally. Best-effort
// callers may ignore the returned error.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress int) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE export_jobs SET progress = ? WHERE id = ?`, progress, id,
	); err != nil {
		return fmt.Errorf("failed to update progress for job %s: %w", id, err)
	}
	return nil
}

// MarkCompleted transitions a job to its terminal completed state with the
// signed download reference.
func (s *Store) MarkCompleted(ctx context.Context, id, downloadURL string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE export_jobs
		 SET status = ?, progress = 100, download_url = ?, completed_at = ?
		 WHERE id = ?`,
		models.StatusCompleted, downloadURL, time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return fmt.Errorf("failed to mark job %s completed: %w", id, err)
	}
	return nil
}

// MarkFailed transitions a job to its terminal failed state with a
// human-readable error message.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE export_jobs
		 SET status = ?, error_message = ?, completed_at = ?
		 WHERE id = ?`,
		models.StatusFailed, message, time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", id, err)
	}
	return nil
}

// GetJob returns a job by id, or (nil, nil) when it does not exist.
func (s *Store) GetJob(ctx context.Context, id string) (*models.ExportJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, project_id, status, width, height, fps, duration,
			progress, download_url, error_message, created_at, completed_at
		 FROM export_jobs WHERE id = ?`, id)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// ListJobsForUser returns a user's jobs, newest first.
func (s *Store) ListJobsForUser(ctx context.Context, userID string) ([]models.ExportJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, project_id, status, width, height, fps, duration,
			progress, download_url, error_message, created_at, completed_at
		 FROM export_jobs WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for user %s: %w", userID, err)
	}
	defer rows.Close()

	var jobs []models.ExportJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job rows: %w", err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.ExportJob, error) {
	var job models.ExportJob
	var createdAt string
	var completedAt sql.NullString

	if err := row.Scan(
		&job.ID, &job.UserID, &job.ProjectID, &job.Status,
		&job.Width, &job.Height, &job.FPS, &job.Duration,
		&job.Progress, &job.DownloadURL, &job.ErrorMessage,
		&createdAt, &completedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	job.CreatedAt = parsed

	if completedAt.Valid && completedAt.String != "" {
		done, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at %q: %w", completedAt.String, err)
		}
		job.CompletedAt = &done
	}
	return &job, nil
}
