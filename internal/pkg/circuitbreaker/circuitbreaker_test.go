package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSMTP = errors.New("smtp: connection refused")

func newTestBreaker(maxFailures int) (*CircuitBreaker, *time.Time) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cb := New(Config{Name: "smtp", MaxFailures: maxFailures, Timeout: time.Minute})
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func TestOpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := cb.Execute(ctx, func() error { return errSMTP })
		assert.ErrorIs(t, err, errSMTP)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestSuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(3)
	ctx := context.Background()

	_ = cb.Execute(ctx, func() error { return errSMTP })
	_ = cb.Execute(ctx, func() error { return errSMTP })
	require.Equal(t, 2, cb.Failures())

	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, 0, cb.Failures())
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenTrial(t *testing.T) {
	cb, clock := newTestBreaker(1)
	ctx := context.Background()

	_ = cb.Execute(ctx, func() error { return errSMTP })
	require.Equal(t, StateOpen, cb.State())

	*clock = clock.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(1)
	ctx := context.Background()

	_ = cb.Execute(ctx, func() error { return errSMTP })
	*clock = clock.Add(2 * time.Minute)
	_ = cb.Execute(ctx, func() error { return errSMTP })

	assert.Equal(t, StateOpen, cb.State())
}

func TestExecuteWithResultCancelledContext(t *testing.T) {
	cb, _ := newTestBreaker(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteWithResult(cb, ctx, func() (string, error) { return "inv_1", nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Get("payments")
	b := r.Get("payments")
	assert.Same(t, a, b)

	r.Get("smtp", Config{MaxFailures: 2})
	stats := r.Stats()
	assert.Len(t, stats, 2)
	assert.Equal(t, "closed", stats["smtp"]["state"])
}
