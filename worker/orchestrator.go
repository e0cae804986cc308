package worker

import (
	"context"
	"sync"
	"time"

	"clipforge/docstore"
	"clipforge/jobstore"
	"clipforge/logger"
	"clipforge/storage"
)

// Orchestrator polls the job store for queued export jobs and runs each
// claimed job as an independent task, bounded by a concurrency ceiling. All
// scheduling state (the in-flight set) lives on the instance.
type Orchestrator struct {
	jobs     *jobstore.Store
	docs     *docstore.Store
	output   storage.Backend
	maxJobs  int
	interval time.Duration

	wake chan struct{}

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New builds an orchestrator over the given collaborators.
func New(jobs *jobstore.Store, docs *docstore.Store, output storage.Backend, maxJobs int, interval time.Duration) *Orchestrator {
	return &Orchestrator{
		jobs:     jobs,
		docs:     docs,
		output:   output,
		maxJobs:  maxJobs,
		interval: interval,
		wake:     make(chan struct{}, 1),
		inFlight: make(map[string]struct{}),
	}
}

// Run drives the polling loop until ctx is cancelled. A timer tick and a
// Wake signal funnel into the same claim logic so scheduling rules exist in
// one place.
func (o *Orchestrator) Run(ctx context.Context) {
	logger.Infof("Worker polling every %s, max %d concurrent jobs", o.interval, o.maxJobs)
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	// Initial poll so queued work left over from a previous run starts
	// without waiting a full interval.
	o.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker loop stopped")
			return
		case <-ticker.C:
			o.tick(ctx)
		case <-o.wake:
			o.tick(ctx)
		}
	}
}

// Wake requests an immediate poll, used by the submission API after
// enqueueing a job. Coalesces when a wake is already pending.
func (o *Orchestrator) Wake() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// InFlight returns the number of jobs currently being processed.
func (o *Orchestrator) InFlight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inFlight)
}

// tick claims at most one queued job and spawns its task. At capacity the
// tick is skipped entirely.
func (o *Orchestrator) tick(ctx context.Context) {
	o.mu.Lock()
	inFlight := len(o.inFlight)
	o.mu.Unlock()
	if inFlight >= o.maxJobs {
		logger.Debugf("At capacity (%d/%d), skipping poll", inFlight, o.maxJobs)
		return
	}

	job, err := o.jobs.ClaimNextQueued(ctx)
	if err != nil {
		logger.Errorf("Failed to claim queued job: %v", err)
		return
	}
	if job == nil {
		return
	}

	logger.Infof("Claimed job %s for project %s", job.ID, job.ProjectID)
	o.mu.Lock()
	o.inFlight[job.ID] = struct{}{}
	o.mu.Unlock()

	go o.processJob(ctx, job)
}
