package events

import "time"

// OutcomeEvent is published once per finalized (message, channel) pair.
type OutcomeEvent struct {
	MessageID   string    `json:"message_id"`
	Destination string    `json:"destination"`
	Channel     string    `json:"channel"`
	Outcome     string    `json:"outcome"`
	Timestamp   time.Time `json:"timestamp"`
}

// InboundEvent is published once per fully reassembled inbound message.
type InboundEvent struct {
	MessageID string    `json:"message_id"`
	Origin    string    `json:"origin"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
