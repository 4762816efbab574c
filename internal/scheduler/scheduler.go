package scheduler

import (
	"context"
	"time"

	"go-sarpras-api/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the notification trigger scans on a cron schedule. Both
// scans are idempotent, so overlapping or repeated runs are harmless.
type Scheduler struct {
	cron     *cron.Cron
	notifier service.NotifierService
	spec     string
	logger   *zap.Logger
}

func New(notifier service.NotifierService, spec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		notifier: notifier,
		spec:     spec,
		logger:   logger,
	}
}

// Start registers the scans and starts the cron loop.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.spec, s.runScans); err != nil {
		s.logger.Error("failed to schedule notification scans", zap.String("spec", s.spec), zap.Error(err))
		return
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
}

// Stop stops the cron loop; running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runScans() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.notifier.ScanLowStock(ctx); err != nil {
		s.logger.Error("low-stock scan failed", zap.Error(err))
	}
	if _, err := s.notifier.ScanOverdue(ctx); err != nil {
		s.logger.Error("overdue scan failed", zap.Error(err))
	}
}
