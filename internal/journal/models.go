package journal

import (
	"database/sql"
	"time"
)

const (
	StatusInFlight  = "in_flight"
	StatusFinalized = "finalized"
)

// Entry is one row of the message journal: a message submitted for
// dispatch and, once aggregation completes, its per-channel outcome.
// Per-part detail is never journaled; it does not survive aggregation.
type Entry struct {
	MessageID        string         `json:"message_id"`
	Destination      string         `json:"destination"`
	Parts            int            `json:"parts"`
	TrackSent        bool           `json:"track_sent"`
	TrackDelivered   bool           `json:"track_delivered"`
	Status           string         `json:"status"`
	SentOutcome      sql.NullString `json:"sent_outcome"`
	DeliveredOutcome sql.NullString `json:"delivered_outcome"`
	SubmittedAt      time.Time      `json:"submitted_at"`
	FinalizedAt      sql.NullTime   `json:"finalized_at"`
}
