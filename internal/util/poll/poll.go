package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrConvergenceTimeout is matched by every error returned when a poll loop
// runs out of attempts.
var ErrConvergenceTimeout = errors.New("convergence timeout")

// Condition reports whether the awaited state has been reached, together with
// the count observed on this attempt.
type Condition func(ctx context.Context) (done bool, observed int, err error)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds poll configuration.
type Config struct {
	Phase       string
	Interval    time.Duration
	MaxAttempts int
	Target      int
	Sleep       SleepFunc
}

// Option is a functional option for poll configuration.
type Option func(*Config)

// TimeoutError describes a poll loop that exhausted its attempts.
type TimeoutError struct {
	Phase    string
	Attempts int
	Interval time.Duration
	Observed int
	Target   int
}

func (e *TimeoutError) Error() string {
	phase := e.Phase
	if phase == "" {
		phase = "poll"
	}
	return fmt.Sprintf("%s: no convergence after %d attempts (%s): observed %d, want %d",
		phase, e.Attempts, e.Total(), e.Observed, e.Target)
}

// Is makes errors.Is(err, ErrConvergenceTimeout) succeed.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrConvergenceTimeout
}

// Total returns the time spent sleeping before the loop gave up.
func (e *TimeoutError) Total() time.Duration {
	return time.Duration(e.Attempts) * e.Interval
}

// Until evaluates cond until it reports done or the attempts are exhausted.
//
// The loop sleeps the configured interval after every unsuccessful attempt,
// including the last one, so a loop that never converges takes exactly
// MaxAttempts x Interval. Errors from cond abort the loop unchanged.
func Until(ctx context.Context, cond Condition, opts ...Option) error {
	cfg := &Config{
		Interval:    5 * time.Second,
		MaxAttempts: 12,
		Sleep:       Sleep,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	// wait counts the attempts; delays go through cfg.Sleep.
	steps := wait.Backoff{Steps: cfg.MaxAttempts}
	delays := wait.Backoff{Duration: cfg.Interval, Factor: 1, Steps: cfg.MaxAttempts}

	var (
		attempts int
		observed int
		condErr  error
		sleepErr error
	)
	err := wait.ExponentialBackoffWithContext(ctx, steps, func(ctx context.Context) (bool, error) {
		attempts++
		done, n, err := cond(ctx)
		if err != nil {
			condErr = err
			return false, err
		}
		observed = n
		if done {
			return true, nil
		}
		if err := cfg.Sleep(ctx, delays.Step()); err != nil {
			sleepErr = err
			return false, err
		}
		return false, nil
	})

	switch {
	case err == nil:
		return nil
	case condErr != nil:
		return condErr
	case sleepErr != nil:
		return fmt.Errorf("%s: cancelled after %d attempts: %w", cfg.phase(), attempts, sleepErr)
	case ctx.Err() != nil:
		return fmt.Errorf("%s: cancelled after %d attempts: %w", cfg.phase(), attempts, ctx.Err())
	case wait.Interrupted(err):
		return &TimeoutError{
			Phase:    cfg.Phase,
			Attempts: cfg.MaxAttempts,
			Interval: cfg.Interval,
			Observed: observed,
			Target:   cfg.Target,
		}
	default:
		return err
	}
}

func (c *Config) phase() string {
	if c.Phase == "" {
		return "poll"
	}
	return c.Phase
}

// Sleep is the default SleepFunc backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithInterval sets the delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxAttempts sets the maximum number of evaluations.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithTarget records the count the caller is waiting for, for error reporting.
func WithTarget(n int) Option {
	return func(c *Config) {
		c.Target = n
	}
}

// WithPhase names the wait in error messages.
func WithPhase(name string) Option {
	return func(c *Config) {
		c.Phase = name
	}
}

// WithSleep replaces the sleep function, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(c *Config) {
		if fn != nil {
			c.Sleep = fn
		}
	}
}
