package dispatch

// ResultCode is the raw per-part completion code reported by a transport.
type ResultCode int

const (
	ResultOK ResultCode = iota
	ResultGenericFailure
	ResultRadioOff
	ResultNullPayload
	ResultNoService
	ResultLimitExceeded
)

// Channel is one of the two independently tracked completion types per
// message. A message may be tracked on one, both, or neither.
type Channel int

const (
	ChannelSent Channel = iota
	ChannelDelivered
)

func (c Channel) String() string {
	switch c {
	case ChannelSent:
		return "sent"
	case ChannelDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a part completion, and, after
// aggregation, of a whole message.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRadioOff
	OutcomeNullPayload
	OutcomeNoService
	OutcomeLimitExceeded
	OutcomeGenericFailure
	// OutcomeTimeout is never produced by Classify; only the expiry
	// sweeper mints it, for subscriptions whose transport went silent.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRadioOff:
		return "radio_off"
	case OutcomeNullPayload:
		return "null_payload"
	case OutcomeNoService:
		return "no_service"
	case OutcomeLimitExceeded:
		return "limit_exceeded"
	case OutcomeGenericFailure:
		return "generic_failure"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Classify maps a raw transport code onto the closed outcome set. It is
// total: codes the transport invents later degrade to OutcomeGenericFailure
// rather than failing.
func Classify(code ResultCode) Outcome {
	switch code {
	case ResultOK:
		return OutcomeSuccess
	case ResultRadioOff:
		return OutcomeRadioOff
	case ResultNullPayload:
		return OutcomeNullPayload
	case ResultNoService:
		return OutcomeNoService
	case ResultLimitExceeded:
		return OutcomeLimitExceeded
	default:
		return OutcomeGenericFailure
	}
}
