package transport

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"smsgate/internal/dispatch"
	"smsgate/internal/logger"
)

// CompletionFunc consumes asynchronous per-part reports from a transport.
type CompletionFunc func(dispatch.Completion)

// LoopbackConfig tunes the simulated transport. DuplicateRate and DropRate
// exist to exercise the dispatcher's tolerance for both transport sins.
type LoopbackConfig struct {
	MinLatency    time.Duration
	MaxLatency    time.Duration
	FailureRate   float64
	DuplicateRate float64
	DropRate      float64
}

// Loopback is an in-process transport for development and demos: every
// part "completes" after a short randomized delay. No radio involved.
type Loopback struct {
	cfg    LoopbackConfig
	sink   CompletionFunc
	logger logger.Logger
	wg     sync.WaitGroup
}

func NewLoopback(cfg LoopbackConfig, sink CompletionFunc, log logger.Logger) *Loopback {
	if cfg.MinLatency <= 0 {
		cfg.MinLatency = 5 * time.Millisecond
	}
	if cfg.MaxLatency < cfg.MinLatency {
		cfg.MaxLatency = cfg.MinLatency
	}
	return &Loopback{cfg: cfg, sink: sink, logger: log}
}

func (l *Loopback) SendParts(ctx context.Context, batch dispatch.PartBatch) error {
	l.logger.Debugw("Loopback accepted batch",
		"destination", batch.Destination,
		"parts", len(batch.Parts),
	)
	for _, tokens := range [][]dispatch.Token{batch.SentTokens, batch.DeliveredTokens} {
		for _, tok := range tokens {
			l.wg.Add(1)
			go l.complete(tok)
		}
	}
	return nil
}

// Close waits for all in-flight simulated completions to drain.
func (l *Loopback) Close() error {
	l.wg.Wait()
	return nil
}

func (l *Loopback) complete(tok dispatch.Token) {
	defer l.wg.Done()

	time.Sleep(l.latency())
	if rand.Float64() < l.cfg.DropRate {
		return
	}

	code := dispatch.ResultOK
	if rand.Float64() < l.cfg.FailureRate {
		code = randomFailure()
	}
	l.sink(dispatch.Completion{Token: tok, Code: code})

	if rand.Float64() < l.cfg.DuplicateRate {
		l.sink(dispatch.Completion{Token: tok, Code: code})
	}
}

func (l *Loopback) latency() time.Duration {
	span := l.cfg.MaxLatency - l.cfg.MinLatency
	if span <= 0 {
		return l.cfg.MinLatency
	}
	return l.cfg.MinLatency + time.Duration(rand.Int64N(int64(span)))
}

func randomFailure() dispatch.ResultCode {
	codes := []dispatch.ResultCode{
		dispatch.ResultGenericFailure,
		dispatch.ResultRadioOff,
		dispatch.ResultNoService,
		dispatch.ResultLimitExceeded,
	}
	return codes[rand.IntN(len(codes))]
}
