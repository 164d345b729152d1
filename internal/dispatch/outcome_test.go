package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code ResultCode
		want Outcome
	}{
		{"ok", ResultOK, OutcomeSuccess},
		{"generic failure", ResultGenericFailure, OutcomeGenericFailure},
		{"radio off", ResultRadioOff, OutcomeRadioOff},
		{"null payload", ResultNullPayload, OutcomeNullPayload},
		{"no service", ResultNoService, OutcomeNoService},
		{"limit exceeded", ResultLimitExceeded, OutcomeLimitExceeded},
		{"unknown code degrades to generic failure", ResultCode(999), OutcomeGenericFailure},
		{"negative code degrades to generic failure", ResultCode(-1), OutcomeGenericFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.code))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "radio_off", OutcomeRadioOff.String())
	assert.Equal(t, "null_payload", OutcomeNullPayload.String())
	assert.Equal(t, "no_service", OutcomeNoService.String())
	assert.Equal(t, "limit_exceeded", OutcomeLimitExceeded.String())
	assert.Equal(t, "generic_failure", OutcomeGenericFailure.String())
	assert.Equal(t, "timeout", OutcomeTimeout.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "sent", ChannelSent.String())
	assert.Equal(t, "delivered", ChannelDelivered.String())
	assert.Equal(t, "unknown", Channel(7).String())
}
