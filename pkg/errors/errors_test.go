package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCauseDoesNotMutateSentinel(t *testing.T) {
	cause := fmt.Errorf("peer rejected")
	err := ErrInvalidDestination.WithCause(cause)

	assert.Nil(t, ErrInvalidDestination.Cause, "sentinel must stay pristine")
	assert.Equal(t, cause, err.Cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsInvalidDestination(t *testing.T) {
	err := ErrInvalidDestination.WithCause(fmt.Errorf("bad prefix"))
	assert.True(t, IsInvalidDestination(err))
	assert.True(t, IsInvalidDestination(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsInvalidDestination(ErrValidation))
	assert.False(t, IsInvalidDestination(fmt.Errorf("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(ErrInvalidDestination))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(fmt.Errorf("anything else")))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrValidation.WithDetail("message", "text is empty"))
	assert.Equal(t, "VALIDATION_ERROR", resp["error_code"])
	require.Contains(t, resp, "details")

	resp = ToErrorResponse(fmt.Errorf("plain failure"))
	assert.Equal(t, "INTERNAL_ERROR", resp["error_code"])
}

func TestRecoverPanic(t *testing.T) {
	assert.NoError(t, RecoverPanic(nil))

	err := RecoverPanic("boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	var called error
	RecoverPanicWithCallback(fmt.Errorf("bang"), func(e error) { called = e })
	require.Error(t, called)
}
