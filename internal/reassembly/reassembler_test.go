package reassembly

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsgate/internal/logger"
)

func TestPartValidate(t *testing.T) {
	tests := []struct {
		name    string
		part    Part
		wantErr bool
	}{
		{"valid single", Part{Origin: "+491701234567", Index: 1, Total: 1, Text: "hi"}, false},
		{"valid middle part", Part{Origin: "+491701234567", Ref: 7, Index: 2, Total: 3}, false},
		{"missing origin", Part{Index: 1, Total: 1}, true},
		{"zero total", Part{Origin: "+491701234567", Index: 1, Total: 0}, true},
		{"zero index", Part{Origin: "+491701234567", Index: 0, Total: 2}, true},
		{"index beyond total", Part{Origin: "+491701234567", Index: 4, Total: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.part.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReassemblerSinglePartShortCircuits(t *testing.T) {
	r := NewReassembler(NewMemoryStore(time.Minute), logger.NopLogger())

	msg, complete, err := r.Offer(context.Background(), Part{
		Origin: "+491701234567", Index: 1, Total: 1, Text: "hello",
	})
	require.NoError(t, err)
	require.True(t, complete)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "+491701234567", msg.Peer.Address)
	assert.NotEmpty(t, msg.ID)
}

func TestReassemblerOutOfOrderParts(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	r := NewReassembler(store, logger.NopLogger())
	ctx := context.Background()

	origin := "+491701234567"
	_, complete, err := r.Offer(ctx, Part{Origin: origin, Ref: 42, Index: 3, Total: 3, Text: "C"})
	require.NoError(t, err)
	assert.False(t, complete)

	_, complete, err = r.Offer(ctx, Part{Origin: origin, Ref: 42, Index: 1, Total: 3, Text: "A"})
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, 1, store.Pending())

	msg, complete, err := r.Offer(ctx, Part{Origin: origin, Ref: 42, Index: 2, Total: 3, Text: "B"})
	require.NoError(t, err)
	require.True(t, complete)
	assert.Equal(t, "ABC", msg.Text, "parts must be joined in index order, not arrival order")
	assert.Zero(t, store.Pending(), "completed fragments must leave the store")
}

func TestReassemblerInvalidPart(t *testing.T) {
	r := NewReassembler(NewMemoryStore(time.Minute), logger.NopLogger())

	_, complete, err := r.Offer(context.Background(), Part{Origin: "", Index: 1, Total: 1})
	assert.Error(t, err)
	assert.False(t, complete)
}

func TestReassemblerKeepsOriginsSeparate(t *testing.T) {
	r := NewReassembler(NewMemoryStore(time.Minute), logger.NopLogger())
	ctx := context.Background()

	// Same reference number from two different origins.
	_, complete, err := r.Offer(ctx, Part{Origin: "+491", Ref: 5, Index: 1, Total: 2, Text: "a"})
	require.NoError(t, err)
	require.False(t, complete)

	_, complete, err = r.Offer(ctx, Part{Origin: "+492", Ref: 5, Index: 2, Total: 2, Text: "x"})
	require.NoError(t, err)
	assert.False(t, complete, "a part from another origin must not complete the message")
}

func TestMemoryStoreOverwritesDuplicateIndex(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	part := Part{Origin: "+491", Ref: 1, Index: 1, Total: 2, Text: "first"}
	_, complete, err := store.Append(ctx, part)
	require.NoError(t, err)
	require.False(t, complete)

	// Retransmission of the same index replaces, never double-counts.
	part.Text = "second"
	_, complete, err = store.Append(ctx, part)
	require.NoError(t, err)
	require.False(t, complete)

	texts, complete, err := store.Append(ctx, Part{Origin: "+491", Ref: 1, Index: 2, Total: 2, Text: "!"})
	require.NoError(t, err)
	require.True(t, complete)
	assert.Equal(t, []string{"second", "!"}, texts)
}

func TestMemoryStoreTTLEviction(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	_, _, err := store.Append(ctx, Part{Origin: "+491", Ref: 9, Index: 1, Total: 2, Text: "a"})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// The stale fragment set is discarded; this part starts a fresh one.
	_, complete, err := store.Append(ctx, Part{Origin: "+491", Ref: 9, Index: 2, Total: 2, Text: "b"})
	require.NoError(t, err)
	assert.False(t, complete)
}
