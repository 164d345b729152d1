package sms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerValidate(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		wantReason InvalidityReason
	}{
		{"valid short number", "+491", ""},
		{"valid full number", "+15551234567", ""},
		{"valid fifteen digits", "+123456789012345", ""},
		{"empty", "", ReasonEmptyAddress},
		{"whitespace only", "   ", ReasonEmptyAddress},
		{"plus only", "+", ReasonEmptyAddress},
		{"no prefix", "15551234567", ReasonMissingPrefix},
		{"letters", "+1555CALLNOW", ReasonNonDigitAddress},
		{"embedded space", "+1555 123456", ReasonNonDigitAddress},
		{"sixteen digits", "+1234567890123456", ReasonAddressTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPeer(tt.address).Validate()
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var peerErr *InvalidPeerError
			require.ErrorAs(t, err, &peerErr)
			assert.Equal(t, tt.wantReason, peerErr.Reason)
		})
	}
}

func TestNewPeerTrimsWhitespace(t *testing.T) {
	p := NewPeer("  +15551234567  ")
	assert.Equal(t, "+15551234567", p.Address)
	assert.NoError(t, p.Validate())
}

func TestNewMessage(t *testing.T) {
	peer := NewPeer("+15551234567")
	a := NewMessage(peer, "hello")
	b := NewMessage(peer, "hello")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID, "every message gets its own identity")
	assert.Equal(t, "hello", a.Text)
	assert.Equal(t, peer, a.Peer)
}

func TestInvalidPeerErrorMessage(t *testing.T) {
	err := NewPeer("bad").Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), string(ReasonMissingPrefix)))
}
