package matching

import (
	"context"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
)

const staleBatchSize = 100

// Scheduler periodically rebuilds vectors that have not been refreshed recently
type Scheduler struct {
	service    Service
	interval   time.Duration
	staleAfter time.Duration
	logger     logger.Logger
}

func NewScheduler(service Service, interval, staleAfter time.Duration, log logger.Logger) *Scheduler {
	return &Scheduler{
		service:    service,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     log,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runEvery(ctx, s.interval, s.refreshStale)
}

func (s *Scheduler) refreshStale(ctx context.Context) error {
	refreshed, err := s.service.RefreshStale(ctx, time.Now().Add(-s.staleAfter), staleBatchSize)
	if refreshed > 0 {
		s.logger.Info("refreshed stale feature vectors", map[string]interface{}{"count": refreshed})
	}
	return err
}

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, task func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				s.logger.Error("scheduled task failed", map[string]interface{}{"error": err.Error()})
			}
		case <-ctx.Done():
			return
		}
	}
}
