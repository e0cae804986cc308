package main

import (
	"context"
	"net/http"

	"clipforge/config"
	"clipforge/docstore"
	"clipforge/jobstore"
	"clipforge/logger"
	"clipforge/routes"
	"clipforge/storage"
	"clipforge/worker"
)

func main() {
	logger.Info("Starting ClipForge export server initialization")

	logger.Debug("Initializing job store")
	jobs, err := jobstore.Open(config.GetJobsDBPath())
	if err != nil {
		logger.Fatalf("Failed to initialize job store: %v", err)
	}
	defer jobs.Close()
	logger.Info("Job store initialized successfully")

	logger.Debug("Initializing document store")
	docs, err := docstore.Open(config.GetDocumentsDBPath())
	if err != nil {
		logger.Fatalf("Failed to initialize document store: %v", err)
	}
	defer docs.Close()
	logger.Info("Document store initialized successfully")

	backendType := config.GetStorageBackend()
	logger.Debugf("Initializing %s output storage backend", backendType)
	output, err := storage.New(backendType)
	if err != nil {
		logger.Fatalf("Failed to initialize storage backend: %v", err)
	}
	logger.Info("Output storage backend initialized successfully")

	// The download route only serves files when outputs stay on this host.
	local, _ := output.(*storage.LocalBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Starting export worker")
	orchestrator := worker.New(jobs, docs, output, config.GetMaxConcurrentJobs(), config.GetPollInterval())
	go orchestrator.Run(ctx)

	logger.Info("Registering HTTP routes")
	mux := http.NewServeMux()
	routes.Register(mux, routes.New(jobs, docs, local, orchestrator))

	addr := config.GetListenAddr()
	logger.Infof("ClipForge export server starting on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}
