package reassembly

import (
	"context"
	"strings"

	"smsgate/internal/logger"
	"smsgate/pkg/metrics"
	"smsgate/pkg/sms"
)

// Reassembler turns inbound parts back into logical messages. Offer
// returns the reassembled message and true on the part that completes it;
// until then parts are buffered in the store.
type Reassembler struct {
	store  FragmentStore
	logger logger.Logger
}

func NewReassembler(store FragmentStore, log logger.Logger) *Reassembler {
	return &Reassembler{store: store, logger: log}
}

func (r *Reassembler) Offer(ctx context.Context, part Part) (sms.Message, bool, error) {
	if err := part.Validate(); err != nil {
		metrics.ReassemblyPartsTotal.WithLabelValues("invalid").Inc()
		return sms.Message{}, false, err
	}

	if part.Total == 1 {
		metrics.ReassemblyPartsTotal.WithLabelValues("completed").Inc()
		return sms.NewMessage(sms.NewPeer(part.Origin), part.Text), true, nil
	}

	texts, complete, err := r.store.Append(ctx, part)
	if err != nil {
		metrics.ReassemblyPartsTotal.WithLabelValues("error").Inc()
		return sms.Message{}, false, err
	}
	if !complete {
		metrics.ReassemblyPartsTotal.WithLabelValues("buffered").Inc()
		return sms.Message{}, false, nil
	}

	metrics.ReassemblyPartsTotal.WithLabelValues("completed").Inc()
	msg := sms.NewMessage(sms.NewPeer(part.Origin), strings.Join(texts, ""))
	r.logger.Debugw("Inbound message reassembled",
		"message_id", msg.ID,
		"origin", part.Origin,
		"parts", part.Total,
	)
	return msg, true, nil
}
