package poll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock records sleeps instead of blocking.
type fakeClock struct {
	slept []time.Duration
}

func (f *fakeClock) sleep(_ context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	return nil
}

func (f *fakeClock) total() time.Duration {
	var sum time.Duration
	for _, d := range f.slept {
		sum += d
	}
	return sum
}

func TestUntil_ImmediateSuccess(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{}
	attempts := 0

	err := Until(context.Background(), func(_ context.Context) (bool, int, error) {
		attempts++
		return true, 3, nil
	}, WithSleep(clock.sleep))

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clock.slept)
}

func TestUntil_SuccessAfterAttempts(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{}
	attempts := 0

	err := Until(context.Background(), func(_ context.Context) (bool, int, error) {
		attempts++
		return attempts == 3, attempts, nil
	}, WithSleep(clock.sleep), WithInterval(2*time.Second), WithMaxAttempts(10))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 4*time.Second, clock.total())
}

func TestUntil_TimeoutIsBounded(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{}
	attempts := 0

	err := Until(context.Background(), func(_ context.Context) (bool, int, error) {
		attempts++
		return false, 1, nil
	},
		WithSleep(clock.sleep),
		WithInterval(5*time.Second),
		WithMaxAttempts(4),
		WithTarget(3),
		WithPhase("wait-active"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConvergenceTimeout)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 4, timeout.Attempts)
	assert.Equal(t, 1, timeout.Observed)
	assert.Equal(t, 3, timeout.Target)
	assert.Equal(t, 20*time.Second, timeout.Total())
	assert.Contains(t, err.Error(), "wait-active")

	assert.Equal(t, 4, attempts)
	assert.Equal(t, 20*time.Second, clock.total())
}

func TestUntil_EvaluationErrorStopsImmediately(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{}
	boom := errors.New("list failed")
	attempts := 0

	err := Until(context.Background(), func(_ context.Context) (bool, int, error) {
		attempts++
		return false, 0, boom
	}, WithSleep(clock.sleep))

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrConvergenceTimeout)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clock.slept)
}

func TestUntil_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Until(ctx, func(_ context.Context) (bool, int, error) {
		return false, 0, nil
	}, WithInterval(time.Hour))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrConvergenceTimeout)
}

func TestUntil_NonPositiveAttemptsRunsOnce(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{}
	attempts := 0

	err := Until(context.Background(), func(_ context.Context) (bool, int, error) {
		attempts++
		return false, 0, nil
	}, WithSleep(clock.sleep), WithMaxAttempts(0))

	assert.ErrorIs(t, err, ErrConvergenceTimeout)
	assert.Equal(t, 1, attempts)
}

func TestSleep_RealTimer(t *testing.T) {
	t.Parallel()
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestUntil_SleepCancelledMidLoop(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Until(ctx, func(_ context.Context) (bool, int, error) {
		attempts++
		return false, 0, nil
	},
		WithPhase("drain"),
		WithMaxAttempts(5),
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			if attempts == 2 {
				cancel()
			}
			return ctx.Err()
		}))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrConvergenceTimeout)
	assert.Contains(t, err.Error(), "drain: cancelled after 2 attempts")
	assert.Equal(t, 2, attempts)
}

func TestUntil_EvaluationDeadlineIsNotTimeout(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{}
	apiErr := fmt.Errorf("list servers: %w", context.DeadlineExceeded)

	err := Until(context.Background(), func(_ context.Context) (bool, int, error) {
		return false, 0, apiErr
	}, WithSleep(clock.sleep), WithMaxAttempts(3))

	assert.Equal(t, apiErr, err)
	assert.NotErrorIs(t, err, ErrConvergenceTimeout)
	assert.Empty(t, clock.slept)
}
