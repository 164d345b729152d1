package sms

import "github.com/google/uuid"

// Message is one application-level unit of communication. A message may
// span several transport parts; callers never see the parts, only the
// message and its aggregate outcome.
type Message struct {
	ID   string `json:"id"`
	Peer Peer   `json:"peer"`
	Text string `json:"text"`
}

func NewMessage(peer Peer, text string) Message {
	return Message{
		ID:   uuid.NewString(),
		Peer: peer,
		Text: text,
	}
}
