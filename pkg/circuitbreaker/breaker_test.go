package circuitbreaker

import (
	"errors"
	"net/http"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/studio-interiors/site-server/pkg/errors"
)

func TestExecute_NilBreakerCallsThrough(t *testing.T) {
	got, err := Execute(nil, func() (string, error) { return "ok", nil })

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.False(t, IsCircuitOpen(nil))
}

func TestExecute_OpensAfterServerErrors(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("test"))
	calls := 0
	failing := func() (int, error) {
		calls++
		return 0, apperrors.UpstreamStatusError("cms", http.StatusBadGateway, "")
	}

	for i := 0; i < 5; i++ {
		_, err := Execute(cb, failing)
		require.Error(t, err)
	}
	_, err := Execute(cb, failing)

	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, calls)
	assert.True(t, IsCircuitOpen(cb))
}

func TestExecute_ClientErrorsKeepCircuitClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("test"))

	for i := 0; i < 10; i++ {
		_, err := Execute(cb, func() (int, error) {
			return 0, apperrors.UpstreamStatusError("cms", http.StatusNotFound, "")
		})
		require.ErrorIs(t, err, apperrors.ErrUpstream)
	}

	assert.False(t, IsCircuitOpen(cb))
}

func TestFormatError(t *testing.T) {
	assert.EqualError(t, FormatError("cms", gobreaker.ErrOpenState), "circuit breaker 'cms' is open: circuit breaker is open")
	assert.ErrorIs(t, FormatError("cms", gobreaker.ErrTooManyRequests), gobreaker.ErrTooManyRequests)

	plain := errors.New("boom")
	assert.Same(t, plain, FormatError("cms", plain))
}
