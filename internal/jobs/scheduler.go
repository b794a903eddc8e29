package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Scheduler wraps the cron runner. Jobs with an invalid or empty schedule
// expression are skipped individually; the remaining jobs still run.
// Overlapping firings of the same job are deliberately not prevented.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler creates a scheduler evaluating expressions in the given IANA
// timezone.
func NewScheduler(timezone string, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", timezone)
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger,
	}, nil
}

// Register schedules job under the cron expression spec. An empty spec
// disables the job; an invalid spec logs the error and skips the job without
// affecting the others.
func (s *Scheduler) Register(name, spec string, job func()) {
	if spec == "" {
		s.logger.Info("job disabled, no schedule configured", "job", name)
		return
	}
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		s.logger.Error("invalid schedule, job not started",
			"job", name,
			"schedule", spec,
			"error", err.Error(),
		)
		return
	}
	s.logger.Info("job scheduled", "job", name, "schedule", spec)
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that is done once in-flight
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
