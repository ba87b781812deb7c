package jobs

import (
	"context"
	"fmt"
	"time"

	"camera-rental-backend/internal/config"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/metrics"
	"camera-rental-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentals   repository.RentalRepository
	equipment repository.EquipmentRepository
	config    *config.Config
	now       func() time.Time
	timeout   time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(rentals repository.RentalRepository, equipment repository.EquipmentRepository, cfg *config.Config) *JobRunner {
	return &JobRunner{
		rentals:   rentals,
		equipment: equipment,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
		timeout:   5 * time.Minute,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery, a deadline and metrics
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		metrics.RecordJobExecution(jobName, time.Since(start), err == nil)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() error {
	overdueErr := jr.MarkOverdueRentals()
	syncErr := jr.SyncEquipmentStatus()
	if overdueErr != nil {
		return overdueErr
	}
	return syncErr
}
