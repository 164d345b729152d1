package transport

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"smsgate/internal/dispatch"
	"smsgate/internal/logger"
	"smsgate/pkg/circuitbreaker"
	"smsgate/pkg/metrics"
	"smsgate/pkg/retry"
)

// InstrumentedConfig wires the operational guards around a raw sender.
type InstrumentedConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Retry          retry.Policy
	BreakerEnabled bool
}

// instrumentedSender wraps a raw PartSender with an outbound rate limit,
// retry with backoff, and a circuit breaker. Carriers throttle and links
// flap; the dispatcher shouldn't know about either.
type instrumentedSender struct {
	inner   dispatch.PartSender
	limiter *rate.Limiter
	policy  retry.Policy
	breaker *circuitbreaker.Wrapper
	logger  logger.Logger
}

func NewInstrumented(inner dispatch.PartSender, cfg InstrumentedConfig, log logger.Logger) dispatch.PartSender {
	s := &instrumentedSender{
		inner:  inner,
		policy: cfg.Retry,
		logger: log,
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	if cfg.BreakerEnabled {
		s.breaker = circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("transport-send"))
	}
	return s
}

func (s *instrumentedSender) SendParts(ctx context.Context, batch dispatch.PartBatch) error {
	if s.limiter != nil {
		// Each part counts against the carrier budget, not each batch.
		if err := s.limiter.WaitN(ctx, len(batch.Parts)); err != nil {
			return fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}

	send := func() error {
		if s.breaker == nil {
			return s.inner.SendParts(ctx, batch)
		}
		_, err := s.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			return nil, s.inner.SendParts(ctx, batch)
		})
		return err
	}

	if s.policy.MaxAttempts <= 1 {
		return send()
	}
	return retry.RetryWithCallback(ctx, s.policy, send, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues("transport").Inc()
		s.logger.Warnw("Retrying transport send",
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
		)
	})
}
