package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsgate/internal/dispatch"
	"smsgate/internal/logger"
	"smsgate/pkg/retry"
)

type flakySender struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (s *flakySender) SendParts(ctx context.Context, batch dispatch.PartBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("carrier link flapped")
	}
	return nil
}

func (s *flakySender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testBatch() dispatch.PartBatch {
	return dispatch.PartBatch{
		Destination: "+15551234567",
		Parts:       []string{"a"},
	}
}

func TestInstrumentedRetriesTransientFailures(t *testing.T) {
	inner := &flakySender{failures: 2}
	sender := NewInstrumented(inner, InstrumentedConfig{
		Retry: retry.Policy{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			Multiplier:      2.0,
		},
	}, logger.NopLogger())

	err := sender.SendParts(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Equal(t, 3, inner.callCount())
}

func TestInstrumentedGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &flakySender{failures: 10}
	sender := NewInstrumented(inner, InstrumentedConfig{
		Retry: retry.Policy{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			Multiplier:      2.0,
		},
	}, logger.NopLogger())

	err := sender.SendParts(context.Background(), testBatch())
	require.Error(t, err)
	assert.Equal(t, 2, inner.callCount())
}

func TestInstrumentedSingleAttemptDoesNotRetry(t *testing.T) {
	inner := &flakySender{failures: 1}
	sender := NewInstrumented(inner, InstrumentedConfig{}, logger.NopLogger())

	err := sender.SendParts(context.Background(), testBatch())
	require.Error(t, err)
	assert.Equal(t, 1, inner.callCount())
}

func TestInstrumentedPassThrough(t *testing.T) {
	inner := &flakySender{}
	sender := NewInstrumented(inner, InstrumentedConfig{
		RateLimitRPS:   1000,
		RateLimitBurst: 10,
		BreakerEnabled: true,
	}, logger.NopLogger())

	require.NoError(t, sender.SendParts(context.Background(), testBatch()))
	assert.Equal(t, 1, inner.callCount())
}

func TestInstrumentedRateLimitHonorsContext(t *testing.T) {
	inner := &flakySender{}
	sender := NewInstrumented(inner, InstrumentedConfig{
		RateLimitRPS:   0.001, // effectively never refills
		RateLimitBurst: 1,
	}, logger.NopLogger())

	// First send consumes the burst.
	require.NoError(t, sender.SendParts(context.Background(), testBatch()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := sender.SendParts(ctx, testBatch())
	require.Error(t, err)
	assert.Equal(t, 1, inner.callCount(), "rate-limited batch must never reach the carrier")
}
