package sms

import (
	"fmt"
	"strings"
)

// MaxAddressDigits is the longest subscriber number accepted, per the
// E.164 fifteen-digit limit.
const MaxAddressDigits = 15

type InvalidityReason string

const (
	ReasonEmptyAddress    InvalidityReason = "empty_address"
	ReasonMissingPrefix   InvalidityReason = "missing_country_prefix"
	ReasonNonDigitAddress InvalidityReason = "non_digit_address"
	ReasonAddressTooLong  InvalidityReason = "address_too_long"
)

// Peer identifies the remote party of a message by its transport address.
type Peer struct {
	Address string `json:"address"`
}

func NewPeer(address string) Peer {
	return Peer{Address: strings.TrimSpace(address)}
}

// Validate reports why the peer address cannot be used as a destination,
// or nil if it can. Validation is structural only; whether the number is
// reachable is up to the transport.
func (p Peer) Validate() error {
	if p.Address == "" {
		return &InvalidPeerError{Reason: ReasonEmptyAddress, Message: "address is empty"}
	}
	if !strings.HasPrefix(p.Address, "+") {
		return &InvalidPeerError{Reason: ReasonMissingPrefix, Message: "address must start with a country prefix (+)"}
	}
	digits := p.Address[1:]
	if digits == "" {
		return &InvalidPeerError{Reason: ReasonEmptyAddress, Message: "address has no digits"}
	}
	if len(digits) > MaxAddressDigits {
		return &InvalidPeerError{Reason: ReasonAddressTooLong, Message: fmt.Sprintf("address has %d digits, max is %d", len(digits), MaxAddressDigits)}
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return &InvalidPeerError{Reason: ReasonNonDigitAddress, Message: fmt.Sprintf("address contains non-digit %q", r)}
		}
	}
	return nil
}

type InvalidPeerError struct {
	Reason  InvalidityReason
	Message string
}

func (e *InvalidPeerError) Error() string {
	return fmt.Sprintf("invalid peer: %s (%s)", e.Message, e.Reason)
}
