package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/metrics"
)

const purgeTimeout = time.Minute

// Scheduler runs housekeeping jobs in the background.
type Scheduler struct {
	cron      *cron.Cron
	idemRepo  repository.IdempotencyRepository
	purgeSpec string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewScheduler creates a scheduler. purgeSpec is a standard cron expression or
// a descriptor such as "@every 1h".
func NewScheduler(purgeSpec string, idemRepo repository.IdempotencyRepository, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(),
		idemRepo:  idemRepo,
		purgeSpec: purgeSpec,
		metrics:   m,
		logger:    logger,
	}
}

// Start registers the jobs and starts the cron loop. A bad expression is
// returned instead of being skipped.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("idempotency_purge", s.purgeSpec))

	if _, err := s.cron.AddFunc(s.purgeSpec, s.PurgeIdempotencyKeys); err != nil {
		s.logger.Error("failed to schedule idempotency purge", zap.Error(err))
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// PurgeIdempotencyKeys deletes expired replay entries.
func (s *Scheduler) PurgeIdempotencyKeys() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	purged, err := s.idemRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("failed to purge idempotency keys", zap.Error(err))
		return
	}
	s.metrics.IdempotencyKeysPurged.Add(float64(purged))
	if purged > 0 {
		s.logger.Info("purged expired idempotency keys", zap.Int64("count", purged))
	}
}
