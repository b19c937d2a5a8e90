package journey

import (
	"context"
	"time"

	"github.com/murasakijyuutann/transport-payment/internal/logger"
)

// Sweeper periodically resolves abandoned journeys.
type Sweeper struct {
	svc      Service
	interval time.Duration
}

func NewSweeper(svc Service, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval}
}

// Start blocks until ctx is cancelled. A non-positive interval disables the
// loop and Start returns immediately.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		logger.Info("incomplete journey sweeper disabled")
		return
	}

	logger.Info("incomplete journey sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("incomplete journey sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) int {
	processed, err := s.svc.SweepIncompleteJourneys(ctx)
	if err != nil {
		logger.Error("incomplete journey sweep failed", "error", err)
	}
	return processed
}
