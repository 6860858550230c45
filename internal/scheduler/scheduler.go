// Package scheduler runs periodic store maintenance.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"weightlog/internal/domain"
)

// maintenanceTimeout bounds a single maintenance run.
const maintenanceTimeout = 2 * time.Minute

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	store  domain.Maintainer
	logger *zap.Logger
}

// New creates a scheduler that runs store.Maintain on schedule (standard
// five-field cron or a descriptor such as "@hourly").
func New(schedule string, store domain.Maintainer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{cron: cron.New(), store: store, logger: logger}
	if _, err := s.cron.AddFunc(schedule, s.RunMaintenance); err != nil {
		return nil, fmt.Errorf("schedule maintenance %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunMaintenance performs one maintenance pass.
func (s *Scheduler) RunMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	start := time.Now()
	if err := s.store.Maintain(ctx); err != nil {
		s.logger.Error("store maintenance failed", zap.Error(err))
		return
	}
	s.logger.Info("store maintenance done", zap.Duration("took", time.Since(start)))
}
