package jobs

import (
	"time"

	"rentalreturn-backend/internal/config"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	returns service.ReturnService
	config  *config.Config
	now     func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(returns service.ReturnService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		returns: returns,
		config:  cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Config exposes the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ProjectOverdueReturns()
}
