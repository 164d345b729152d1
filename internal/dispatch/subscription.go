package dispatch

import (
	"time"

	"smsgate/pkg/sms"
)

// Listener receives the aggregate outcome for one tracked channel of a
// message. It is invoked at most once per registration.
type Listener func(msg sms.Message, outcome Outcome)

// subscription binds the full token set of one (message, channel) to a
// listener. It fires at most once: the tracker hands the finalized
// aggregate to exactly one report call, and only that call invokes the
// listener and retires the subscription from the routing table. A late or
// duplicated completion for a retired subscription misses the routing
// table and is dropped, never mis-delivered.
type subscription struct {
	msg       sms.Message
	channel   Channel
	tokens    []Token
	tokenSet  map[Token]struct{}
	agg       *tracker
	listener  Listener
	retire    func(*subscription, Outcome)
	createdAt time.Time
}

func newSubscription(msg sms.Message, ch Channel, tokens []Token, listener Listener, retire func(*subscription, Outcome)) *subscription {
	set := make(map[Token]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return &subscription{
		msg:       msg,
		channel:   ch,
		tokens:    tokens,
		tokenSet:  set,
		agg:       newTracker(len(tokens)),
		listener:  listener,
		retire:    retire,
		createdAt: time.Now(),
	}
}

// handle folds one classified part outcome into the aggregate. Tokens not
// in this subscription's set are ignored; routing is the dispatcher's job,
// but a foreign token must never corrupt the count.
func (s *subscription) handle(tok Token, out Outcome) {
	if _, ok := s.tokenSet[tok]; !ok {
		return
	}
	final, done := s.agg.report(out)
	if !done {
		return
	}
	s.fire(final)
}

// expire force-finalizes a subscription whose parts stopped reporting.
// No-op when the subscription already fired.
func (s *subscription) expire(out Outcome) bool {
	final, ok := s.agg.abort(out)
	if !ok {
		return false
	}
	s.fire(final)
	return true
}

func (s *subscription) fire(final Outcome) {
	if s.listener != nil {
		s.listener(s.msg, final)
	}
	s.retire(s, final)
}
