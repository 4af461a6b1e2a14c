package config

import (
	"os"
	"strconv"
	"time"
)

// PollSettings bounds every wait loop of the reconciler. Timeouts are
// attempt-bounded: a loop gives up after MaxAttempts x Interval.
type PollSettings struct {
	Interval        time.Duration // Delay between instance listings
	MaxAttempts     int           // Attempts for draining pending instances
	LongMaxAttempts int           // Attempts for power-on, activation, stop, termination and volume cleanup
	ActionInterval  time.Duration // Delay between action status checks
	ActionAttempts  int           // Attempts before an action wait gives up
}

// LoadPollSettings loads poll configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - NODEFLEET_POLL_INTERVAL (default: 5s)
//   - NODEFLEET_POLL_MAX_ATTEMPTS (default: 12)
//   - NODEFLEET_POLL_LONG_MAX_ATTEMPTS (default: 96)
//   - NODEFLEET_ACTION_INTERVAL (default: 5s)
//   - NODEFLEET_ACTION_MAX_ATTEMPTS (default: 120)
func LoadPollSettings() *PollSettings {
	return &PollSettings{
		Interval:        parseDuration("NODEFLEET_POLL_INTERVAL", 5*time.Second),
		MaxAttempts:     parseInt("NODEFLEET_POLL_MAX_ATTEMPTS", 12),
		LongMaxAttempts: parseInt("NODEFLEET_POLL_LONG_MAX_ATTEMPTS", 96),
		ActionInterval:  parseDuration("NODEFLEET_ACTION_INTERVAL", 5*time.Second),
		ActionAttempts:  parseInt("NODEFLEET_ACTION_MAX_ATTEMPTS", 120),
	}
}

// DefaultPollSettings returns the settings used when nothing is configured.
func DefaultPollSettings() *PollSettings {
	return &PollSettings{
		Interval:        5 * time.Second,
		MaxAttempts:     12,
		LongMaxAttempts: 96,
		ActionInterval:  5 * time.Second,
		ActionAttempts:  120,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, fails to parse or is not positive, the
// default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set, fails to parse or is not positive, the
// default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}

	return i
}
