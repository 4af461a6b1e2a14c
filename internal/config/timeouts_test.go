package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadPollSettings_Defaults(t *testing.T) {
	for _, k := range []string{
		"NODEFLEET_POLL_INTERVAL",
		"NODEFLEET_POLL_MAX_ATTEMPTS",
		"NODEFLEET_POLL_LONG_MAX_ATTEMPTS",
		"NODEFLEET_ACTION_INTERVAL",
		"NODEFLEET_ACTION_MAX_ATTEMPTS",
	} {
		t.Setenv(k, "")
	}

	assert.Equal(t, DefaultPollSettings(), LoadPollSettings())
}

func TestLoadPollSettings_CustomValues(t *testing.T) {
	t.Setenv("NODEFLEET_POLL_INTERVAL", "2s")
	t.Setenv("NODEFLEET_POLL_MAX_ATTEMPTS", "3")
	t.Setenv("NODEFLEET_POLL_LONG_MAX_ATTEMPTS", "7")
	t.Setenv("NODEFLEET_ACTION_INTERVAL", "500ms")
	t.Setenv("NODEFLEET_ACTION_MAX_ATTEMPTS", "9")

	s := LoadPollSettings()

	assert.Equal(t, 2*time.Second, s.Interval)
	assert.Equal(t, 3, s.MaxAttempts)
	assert.Equal(t, 7, s.LongMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, s.ActionInterval)
	assert.Equal(t, 9, s.ActionAttempts)
}

func TestLoadPollSettings_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable duration", "NODEFLEET_POLL_INTERVAL", "soon"},
		{"negative duration", "NODEFLEET_POLL_INTERVAL", "-5s"},
		{"unparseable int", "NODEFLEET_POLL_MAX_ATTEMPTS", "many"},
		{"zero attempts", "NODEFLEET_POLL_MAX_ATTEMPTS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			s := LoadPollSettings()
			assert.Equal(t, 5*time.Second, s.Interval)
			assert.Equal(t, 12, s.MaxAttempts)
		})
	}
}
