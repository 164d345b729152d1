package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smsgate/internal/logger"
	"smsgate/pkg/errors"
	"smsgate/pkg/metrics"
	"smsgate/pkg/sms"
	"smsgate/pkg/tracing"
)

// Splitter divides message text into transport-sized part payloads.
type Splitter interface {
	Split(text string) []string
}

// PartBatch is everything a transport needs to push one message out: the
// ordered part payloads plus, per tracked channel, one token per part in
// the same order. Token slices are nil for untracked channels.
type PartBatch struct {
	Destination     string
	Parts           []string
	SentTokens      []Token
	DeliveredTokens []Token
}

// PartSender is the outbound transport primitive. SendParts is
// fire-and-forget: it must not block on any part's completion. The
// transport later reports one Completion per token, possibly zero times
// (lost) or more than once (duplicated); both are tolerated upstream.
type PartSender interface {
	SendParts(ctx context.Context, batch PartBatch) error
}

// Completion is one asynchronous per-part report raised by the transport.
type Completion struct {
	Token Token
	Code  ResultCode
}

// Recorder observes message lifecycle transitions. Implementations journal
// them, publish them, or both; nil hooks are skipped.
type Recorder interface {
	MessageSubmitted(ctx context.Context, msg sms.Message, parts int, tracked []Channel)
	MessageFinalized(msg sms.Message, ch Channel, outcome Outcome)
}

// Dispatcher is the single long-lived entry point for sending messages and
// correlating their per-part completions. Construct one per process and
// share it; all state lives on the instance.
type Dispatcher struct {
	mu     sync.RWMutex
	routes map[Token]*subscription

	tokens   *TokenSource
	splitter Splitter
	sender   PartSender
	recorder Recorder
	logger   logger.Logger
}

func NewDispatcher(splitter Splitter, sender PartSender, recorder Recorder, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		routes:   make(map[Token]*subscription),
		tokens:   NewTokenSource(),
		splitter: splitter,
		sender:   sender,
		recorder: recorder,
		logger:   log,
	}
}

// Send validates, splits and hands the message to the transport, returning
// the part count without waiting for any completion. onSent and
// onDelivered each enable tracking of their channel; pass nil to skip a
// channel. With both nil the message goes out fire-and-forget: no tokens
// are allocated and nothing is ever reported back.
//
// Validation failures surface synchronously, before any token is allocated
// or any transport call is made.
func (d *Dispatcher) Send(ctx context.Context, msg sms.Message, onSent, onDelivered Listener) (int, error) {
	ctx, span := tracing.GetTracer("dispatch").Start(ctx, "dispatch.send")
	defer span.End()

	if err := msg.Peer.Validate(); err != nil {
		metrics.MessagesSubmittedTotal.WithLabelValues("rejected").Inc()
		return 0, errors.ErrInvalidDestination.WithCause(err)
	}

	start := time.Now()
	parts := d.splitter.Split(msg.Text)
	if len(parts) == 0 {
		metrics.MessagesSubmittedTotal.WithLabelValues("rejected").Inc()
		return 0, errors.ErrValidation.WithDetail("message", "message text is empty")
	}

	batch := PartBatch{
		Destination: msg.Peer.Address,
		Parts:       parts,
	}
	var tracked []Channel
	if onSent != nil {
		batch.SentTokens = d.register(msg, ChannelSent, len(parts), onSent)
		tracked = append(tracked, ChannelSent)
	}
	if onDelivered != nil {
		batch.DeliveredTokens = d.register(msg, ChannelDelivered, len(parts), onDelivered)
		tracked = append(tracked, ChannelDelivered)
	}

	if err := d.sender.SendParts(ctx, batch); err != nil {
		// The transport rejected the batch outright, so no completion
		// will ever arrive for these tokens; drop them now.
		d.unregister(batch.SentTokens)
		d.unregister(batch.DeliveredTokens)
		metrics.InflightSubscriptions.Sub(float64(len(tracked)))
		metrics.MessagesSubmittedTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to hand message %s to transport: %w", msg.ID, err)
	}

	metrics.MessagesSubmittedTotal.WithLabelValues("accepted").Inc()
	metrics.PartsDispatchedTotal.Add(float64(len(parts)))
	metrics.ObserveSendDuration(time.Since(start))

	if d.recorder != nil {
		d.recorder.MessageSubmitted(ctx, msg, len(parts), tracked)
	}
	d.logger.DebugwCtx(ctx, "Message handed to transport",
		"message_id", msg.ID,
		"parts", len(parts),
		"tracked_channels", len(tracked),
	)
	return len(parts), nil
}

// HandleCompletion routes one asynchronous per-part report to the
// subscription owning its token. Unknown tokens (already-retired
// subscriptions, duplicates, transport noise) are dropped.
func (d *Dispatcher) HandleCompletion(c Completion) {
	d.mu.RLock()
	sub, ok := d.routes[c.Token]
	d.mu.RUnlock()

	if !ok {
		metrics.DroppedCompletionsTotal.Inc()
		return
	}

	out := Classify(c.Code)
	metrics.CompletionsTotal.WithLabelValues(sub.channel.String(), out.String()).Inc()
	sub.handle(c.Token, out)
}

// Inflight reports the number of live subscriptions.
func (d *Dispatcher) Inflight() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[*subscription]struct{})
	for _, sub := range d.routes {
		seen[sub] = struct{}{}
	}
	return len(seen)
}

func (d *Dispatcher) register(msg sms.Message, ch Channel, parts int, listener Listener) []Token {
	tokens := make([]Token, parts)
	for i := range tokens {
		tokens[i] = d.tokens.Next()
	}
	sub := newSubscription(msg, ch, tokens, d.guard(listener), d.retire)

	d.mu.Lock()
	for _, tok := range tokens {
		d.routes[tok] = sub
	}
	d.mu.Unlock()

	metrics.InflightSubscriptions.Inc()
	return tokens
}

// guard shields the completion path from a panicking listener. The
// subscription still retires; the panic becomes an error log.
func (d *Dispatcher) guard(l Listener) Listener {
	if l == nil {
		return nil
	}
	return func(msg sms.Message, outcome Outcome) {
		defer func() {
			if err := errors.RecoverPanic(recover()); err != nil {
				d.logger.Errorw("Outcome listener panicked",
					"message_id", msg.ID,
					"error", err,
				)
			}
		}()
		l(msg, outcome)
	}
}

// retire removes a fired subscription's tokens from the routing table.
// Called exactly once per subscription, by the finalizing report.
func (d *Dispatcher) retire(sub *subscription, final Outcome) {
	d.unregister(sub.tokens)
	metrics.InflightSubscriptions.Dec()

	if d.recorder != nil {
		d.recorder.MessageFinalized(sub.msg, sub.channel, final)
	}
	d.logger.Debugw("Subscription finalized",
		"message_id", sub.msg.ID,
		"channel", sub.channel.String(),
		"outcome", final.String(),
	)
}

func (d *Dispatcher) unregister(tokens []Token) {
	if len(tokens) == 0 {
		return
	}
	d.mu.Lock()
	for _, tok := range tokens {
		delete(d.routes, tok)
	}
	d.mu.Unlock()
}

// expireOlderThan force-finalizes every subscription registered before the
// cutoff, reporting OutcomeTimeout to its listener. Returns how many fired.
func (d *Dispatcher) expireOlderThan(cutoff time.Time) int {
	d.mu.RLock()
	stale := make(map[*subscription]struct{})
	for _, sub := range d.routes {
		if sub.createdAt.Before(cutoff) {
			stale[sub] = struct{}{}
		}
	}
	d.mu.RUnlock()

	expired := 0
	for sub := range stale {
		if sub.expire(OutcomeTimeout) {
			expired++
		}
	}
	return expired
}
