package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"clipforge/config"
	"clipforge/docstore"
	"clipforge/logger"
	"clipforge/models"
	"clipforge/storage"
	"clipforge/timeline"
)

// processJob runs a claimed job end to end. The in-flight slot and the
// per-job scratch directory are released unconditionally, whatever the
// outcome of the render.
func (o *Orchestrator) processJob(ctx context.Context, job *models.ExportJob) {
	scratch := filepath.Join(config.GetTempDir(), job.ID)
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warnf("Failed to remove scratch dir %s: %v", scratch, err)
		}
		o.mu.Lock()
		delete(o.inFlight, job.ID)
		o.mu.Unlock()
	}()

	if err := o.renderJob(ctx, job, scratch); err != nil {
		if errors.Is(err, ErrTransientRef) {
			logger.Warnf("Job %s referenced browser-local media and cannot be rendered: %v", job.ID, err)
		} else {
			logger.Errorf("Job %s failed: %v", job.ID, err)
		}
		if markErr := o.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			logger.Errorf("Failed to mark job %s failed: %v", job.ID, markErr)
		}
		return
	}
	logger.Infof("Job %s completed", job.ID)
}

// renderJob performs the export pipeline: load the timeline document,
// materialize remote assets into the scratch dir, compile the render
// arguments, run the engine, then upload the result and record a signed
// download link.
func (o *Orchestrator) renderJob(ctx context.Context, job *models.ExportJob, scratch string) error {
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	doc, err := o.docs.Get(job.UserID, job.ID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("timeline document missing for job %s", job.ID)
		}
		return fmt.Errorf("load timeline document: %w", err)
	}

	if err := materializeAssets(ctx, doc, scratch); err != nil {
		return err
	}

	result := timeline.Compile(*doc, timeline.Options{
		FontFile:     config.GetFontFile(),
		TextPosition: config.GetTextPosition(),
	})
	for _, skipped := range result.Skipped {
		logger.Warnf("Job %s: skipping element %s: %s", job.ID, skipped.ElementID, skipped.Reason)
	}

	outputPath := filepath.Join(scratch, job.ID+".mp4")
	if err := o.runEngine(ctx, job, result.Args, outputPath); err != nil {
		return err
	}

	out, err := os.Open(outputPath)
	if err != nil {
		return fmt.Errorf("open rendered output: %w", err)
	}
	defer out.Close()

	key := storage.ObjectKey(job.UserID, job.ID)
	if err := o.output.Put(ctx, key, out); err != nil {
		return fmt.Errorf("upload output: %w", err)
	}
	url, err := o.output.SignedURL(ctx, key, storage.SignedURLTTL)
	if err != nil {
		return fmt.Errorf("sign download url: %w", err)
	}

	if err := o.jobs.MarkCompleted(ctx, job.ID, url); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}
