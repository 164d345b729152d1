package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSourceSequential(t *testing.T) {
	ts := NewTokenSource()

	a := ts.Next()
	b := ts.Next()
	assert.NotEqual(t, a, b)
	assert.Equal(t, a+1, b)
}

func TestTokenSourceConcurrentUniqueness(t *testing.T) {
	const (
		goroutines = 100
		perRoutine = 100
	)

	ts := NewTokenSource()

	var wg sync.WaitGroup
	results := make([][]Token, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			tokens := make([]Token, 0, perRoutine)
			for i := 0; i < perRoutine; i++ {
				tokens = append(tokens, ts.Next())
			}
			results[g] = tokens
		}(g)
	}
	wg.Wait()

	seen := make(map[Token]struct{}, goroutines*perRoutine)
	for _, tokens := range results {
		for _, tok := range tokens {
			_, dup := seen[tok]
			require.False(t, dup, "token %d minted twice", tok)
			seen[tok] = struct{}{}
		}
	}
	assert.Len(t, seen, goroutines*perRoutine)
}
