package docstore

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"clipforge/models"
)

// Store holds the serialized timeline document for each export job, keyed by
// (owning user, job id). The submission API writes through it; the worker
// reads the document back when the job is claimed.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the document database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// key mirrors the blob-store path convention: {user}/{job}/timeline.json.
func key(userID, jobID string) []byte {
	return []byte(userID + "/" + jobID + "/timeline.json")
}

// Put serializes and stores the timeline document for a job.
func (s *Store) Put(userID, jobID string, doc *models.ExportDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline document: %w", err)
	}
	if err := s.db.Set(key(userID, jobID), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to store timeline document for job %s: %w", jobID, err)
	}
	return nil
}

// Get loads and parses the timeline document for a job. A missing document
// returns ErrNotFound.
func (s *Store) Get(userID, jobID string) (*models.ExportDocument, error) {
	data, closer, err := s.db.Get(key(userID, jobID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("timeline document for job %s: %w", jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read timeline document for job %s: %w", jobID, err)
	}
	defer closer.Close()

	var doc models.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt timeline document for job %s: %w", jobID, err)
	}
	return &doc, nil
}

// Delete removes a job's timeline document.
func (s *Store) Delete(userID, jobID string) error {
	return s.db.Delete(key(userID, jobID), pebble.Sync)
}
