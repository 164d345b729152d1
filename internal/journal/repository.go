package journal

import (
	"context"
	"database/sql"
	"fmt"

	"smsgate/pkg/errors"
)

type Repository interface {
	Insert(ctx context.Context, e Entry) error
	RecordOutcome(ctx context.Context, messageID, channel, outcome string) error
	Get(ctx context.Context, messageID string) (Entry, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO message_journal
			(message_id, destination, parts, track_sent, track_delivered, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	if _, err := r.db.ExecContext(ctx, query,
		e.MessageID, e.Destination, e.Parts, e.TrackSent, e.TrackDelivered, StatusInFlight,
	); err != nil {
		return fmt.Errorf("failed to insert journal entry for %s: %w", e.MessageID, err)
	}
	return nil
}

// RecordOutcome stores a channel's aggregate outcome. The entry flips to
// finalized once every tracked channel has reported.
func (r *PostgresRepository) RecordOutcome(ctx context.Context, messageID, channel, outcome string) error {
	var query string
	switch channel {
	case "sent":
		query = `
			UPDATE message_journal
			SET sent_outcome = $2,
			    status = CASE WHEN NOT track_delivered OR delivered_outcome IS NOT NULL
			                  THEN 'finalized' ELSE status END,
			    finalized_at = CASE WHEN NOT track_delivered OR delivered_outcome IS NOT NULL
			                        THEN NOW() ELSE finalized_at END
			WHERE message_id = $1
		`
	case "delivered":
		query = `
			UPDATE message_journal
			SET delivered_outcome = $2,
			    status = CASE WHEN NOT track_sent OR sent_outcome IS NOT NULL
			                  THEN 'finalized' ELSE status END,
			    finalized_at = CASE WHEN NOT track_sent OR sent_outcome IS NOT NULL
			                        THEN NOW() ELSE finalized_at END
			WHERE message_id = $1
		`
	default:
		return fmt.Errorf("unknown outcome channel %q", channel)
	}

	res, err := r.db.ExecContext(ctx, query, messageID, outcome)
	if err != nil {
		return fmt.Errorf("failed to record %s outcome for %s: %w", channel, messageID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.ErrNotFound.WithDetail("message", fmt.Sprintf("no journal entry for message %s", messageID))
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, messageID string) (Entry, error) {
	query := `
		SELECT message_id, destination, parts, track_sent, track_delivered,
		       status, sent_outcome, delivered_outcome, submitted_at, finalized_at
		FROM message_journal
		WHERE message_id = $1
	`
	var e Entry
	err := r.db.QueryRowContext(ctx, query, messageID).Scan(
		&e.MessageID,
		&e.Destination,
		&e.Parts,
		&e.TrackSent,
		&e.TrackDelivered,
		&e.Status,
		&e.SentOutcome,
		&e.DeliveredOutcome,
		&e.SubmittedAt,
		&e.FinalizedAt,
	)
	if err == sql.ErrNoRows {
		return Entry{}, errors.ErrNotFound.WithDetail("message", fmt.Sprintf("no journal entry for message %s", messageID))
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load journal entry %s: %w", messageID, err)
	}
	return e, nil
}
