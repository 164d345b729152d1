package api

import "time"

type SendMessageRequest struct {
	Destination    string `json:"destination" binding:"required"`
	Text           string `json:"text" binding:"required"`
	TrackSent      bool   `json:"track_sent"`
	TrackDelivered bool   `json:"track_delivered"`
}

type SendMessageResponse struct {
	MessageID string   `json:"message_id"`
	Parts     int      `json:"parts"`
	Tracked   []string `json:"tracked"`
}

type MessageStatusResponse struct {
	MessageID        string     `json:"message_id"`
	Destination      string     `json:"destination"`
	Parts            int        `json:"parts"`
	Status           string     `json:"status"`
	SentOutcome      *string    `json:"sent_outcome,omitempty"`
	DeliveredOutcome *string    `json:"delivered_outcome,omitempty"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	FinalizedAt      *time.Time `json:"finalized_at,omitempty"`
}

type InboundPartRequest struct {
	Origin string `json:"origin" binding:"required"`
	Ref    uint16 `json:"ref"`
	Index  int    `json:"index"`
	Total  int    `json:"total" binding:"required"`
	Text   string `json:"text"`
}

type InboundPartResponse struct {
	Complete  bool   `json:"complete"`
	MessageID string `json:"message_id,omitempty"`
}
