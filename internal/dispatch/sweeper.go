package dispatch

import (
	"context"
	"time"

	"smsgate/internal/logger"
	"smsgate/pkg/metrics"
)

// Sweeper retires subscriptions whose transport never reported back.
// Without it a lost completion would leave tokens in the routing table for
// the life of the process; with it the listener gets OutcomeTimeout once
// the message has been in flight longer than TTL.
type Sweeper struct {
	dispatcher *Dispatcher
	interval   time.Duration
	ttl        time.Duration
	logger     logger.Logger
}

func NewSweeper(d *Dispatcher, interval, ttl time.Duration, log logger.Logger) *Sweeper {
	return &Sweeper{
		dispatcher: d,
		interval:   interval,
		ttl:        ttl,
		logger:     log,
	}
}

// Run sweeps until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired := s.dispatcher.expireOlderThan(time.Now().Add(-s.ttl))
			if expired > 0 {
				metrics.SubscriptionsExpiredTotal.Add(float64(expired))
				s.logger.Warnw("Expired stale subscriptions",
					"count", expired,
					"ttl", s.ttl,
				)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
