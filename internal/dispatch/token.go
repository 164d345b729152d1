package dispatch

import (
	"math/rand/v2"
	"sync/atomic"
)

// Token correlates one asynchronous part completion with the subscription
// waiting for it. Tokens are process-unique: a token minted for part 2 of
// message A can never collide with any token of message B, nor with the
// sent-track token of its own part.
type Token uint64

const tokenSeedRange = 1 << 20

// TokenSource mints tokens from a monotonically advancing counter. The
// counter is seeded randomly so that completions still buffered in the
// transport from a previous process run are unlikely to alias a fresh
// token. Wraparound of the 64-bit counter is an operational non-concern.
type TokenSource struct {
	ctr atomic.Uint64
}

func NewTokenSource() *TokenSource {
	ts := &TokenSource{}
	ts.ctr.Store(rand.Uint64N(tokenSeedRange))
	return ts
}

// Next returns a token no other call in this process has returned.
// Safe for concurrent use.
func (ts *TokenSource) Next() Token {
	return Token(ts.ctr.Add(1))
}
