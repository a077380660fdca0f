package services

import (
	"context"
	"errors"
	"time"

	"github.com/ordalabs/orda-backend/internal/logger"
)

// Scheduler triggers a full pipeline run on a fixed interval. A tick that
// lands while a run is still in progress is skipped.
type Scheduler struct {
	log      *logger.Logger
	pipeline *PipelineService
	interval time.Duration
}

func NewScheduler(log *logger.Logger, pipeline *PipelineService, intervalMinutes int) *Scheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	return &Scheduler{
		log:      log.With("service", "Scheduler"),
		pipeline: pipeline,
		interval: time.Duration(intervalMinutes) * time.Minute,
	}
}

// Start launches the tick loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("Scheduler started", "interval", s.interval.String())
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	run, err := s.pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			s.log.Warn("Scheduled run skipped; previous run still in progress")
			return
		}
		s.log.Error("Scheduled pipeline run failed", "error", err.Error())
		return
	}
	s.log.Info("Scheduled pipeline run completed", "run_id", run.RunID, "issues", run.IssueCount)
}
