package dispatch

import "sync"

// tracker folds per-part outcomes for one (message, channel) into a single
// aggregate. The fold is commutative: the first non-success outcome
// observed sticks, a later success never overrides it, so the final value
// does not depend on the order completions arrive in.
type tracker struct {
	mu        sync.Mutex
	remaining int
	worst     Outcome
}

func newTracker(parts int) *tracker {
	return &tracker{remaining: parts, worst: OutcomeSuccess}
}

// report folds one part outcome. The bool is true only on the call that
// observes the last outstanding part; exactly one call ever gets it.
// Reports after the count reached zero are no-ops, which is what makes the
// whole pipeline idempotent against duplicated transport notifications.
func (t *tracker) report(o Outcome) (Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining == 0 {
		return t.worst, false
	}
	if t.worst == OutcomeSuccess && o != OutcomeSuccess {
		t.worst = o
	}
	t.remaining--
	if t.remaining == 0 {
		return t.worst, true
	}
	return t.worst, false
}

// abort force-finalizes the aggregate for parts that will never report.
// A failure already folded in wins over the abort outcome; returns false
// if the tracker had already finalized.
func (t *tracker) abort(o Outcome) (Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining == 0 {
		return t.worst, false
	}
	t.remaining = 0
	if t.worst == OutcomeSuccess {
		t.worst = o
	}
	return t.worst, true
}
