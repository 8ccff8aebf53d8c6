package jobs

import (
	"fmt"
	"log/slog"

	"snapeats/internal/core/ports"
	"snapeats/internal/pkg/clock"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	offerSweepJob *OfferSweepJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(uowFactory ports.UnitOfWorkFactory, clk clock.Clock, logger *slog.Logger) *JobManager {
	return &JobManager{
		offerSweepJob: NewOfferSweepJob(uowFactory, clk, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.offerSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start offer sweep job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.offerSweepJob.Stop()
}
