package main

import (
	"context"
	"time"

	"smsgate/internal/dispatch"
	"smsgate/internal/events"
	"smsgate/internal/journal"
	"smsgate/internal/logger"
	"smsgate/pkg/metrics"
	"smsgate/pkg/sms"
)

const recordTimeout = 5 * time.Second

// lifecycleRecorder persists and publishes message lifecycle transitions.
// Both sinks are optional; a sink failure is logged, never propagated,
// so recording cannot interfere with dispatch.
type lifecycleRecorder struct {
	journal   journal.Repository
	publisher *events.Publisher
	logger    logger.Logger
}

func (r *lifecycleRecorder) MessageSubmitted(ctx context.Context, msg sms.Message, parts int, tracked []dispatch.Channel) {
	if r.journal == nil {
		return
	}

	entry := journal.Entry{
		MessageID:   msg.ID,
		Destination: msg.Peer.Address,
		Parts:       parts,
	}
	for _, ch := range tracked {
		switch ch {
		case dispatch.ChannelSent:
			entry.TrackSent = true
		case dispatch.ChannelDelivered:
			entry.TrackDelivered = true
		}
	}

	if err := r.journal.Insert(ctx, entry); err != nil {
		metrics.IncJournalWrite("insert", "error")
		r.logger.ErrorwCtx(ctx, "Failed to journal message submission",
			"message_id", msg.ID,
			"error", err,
		)
		return
	}
	metrics.IncJournalWrite("insert", "ok")
}

// MessageFinalized runs on the completion path, detached from any request
// context.
func (r *lifecycleRecorder) MessageFinalized(msg sms.Message, ch dispatch.Channel, outcome dispatch.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if r.journal != nil {
		if err := r.journal.RecordOutcome(ctx, msg.ID, ch.String(), outcome.String()); err != nil {
			metrics.IncJournalWrite("record_outcome", "error")
			r.logger.Errorw("Failed to journal message outcome",
				"message_id", msg.ID,
				"channel", ch.String(),
				"error", err,
			)
		} else {
			metrics.IncJournalWrite("record_outcome", "ok")
		}
	}

	if r.publisher != nil {
		ev := events.OutcomeEvent{
			MessageID:   msg.ID,
			Destination: msg.Peer.Address,
			Channel:     ch.String(),
			Outcome:     outcome.String(),
		}
		if err := r.publisher.PublishOutcome(ctx, ev); err != nil {
			r.logger.Errorw("Failed to publish outcome event",
				"message_id", msg.ID,
				"channel", ch.String(),
				"error", err,
			)
		}
	}
}
