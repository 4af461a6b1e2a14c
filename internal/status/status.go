// Package status projects provider-native instance states onto the small
// lifecycle enum consumed by callers.
package status

import (
	"errors"
	"fmt"
)

// Status is the abstract lifecycle state of an instance.
type Status int

const (
	// Unknown means the provider itself does not know the state.
	Unknown Status = iota
	// Init covers instances that are being created or transitioning.
	Init
	// Up means the instance is running.
	Up
	// Stopped means the instance is powered off.
	Stopped
)

func (s Status) String() string {
	switch s {
	case Init:
		return "INIT"
	case Up:
		return "UP"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets statuses print by name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrUnmappedStatus is matched by errors for native states without a mapping.
var ErrUnmappedStatus = errors.New("unmapped provider status")

// UnmappedError reports a native status string the projector does not know.
type UnmappedError struct {
	Provider string
	Native   string
}

func (e *UnmappedError) Error() string {
	return fmt.Sprintf("%s: provider status %q has no lifecycle mapping", e.Provider, e.Native)
}

func (e *UnmappedError) Is(target error) bool {
	return target == ErrUnmappedStatus
}

// Projector maps native status strings through a fixed table.
type Projector struct {
	provider string
	table    map[string]Status
}

// NewProjector creates a projector over a copy of table.
func NewProjector(provider string, table map[string]Status) *Projector {
	t := make(map[string]Status, len(table))
	for k, v := range table {
		t[k] = v
	}
	return &Projector{provider: provider, table: t}
}

// Project returns the lifecycle state for native. Strings missing from the
// table fail instead of being guessed.
func (p *Projector) Project(native string) (Status, error) {
	s, ok := p.table[native]
	if !ok {
		return Unknown, &UnmappedError{Provider: p.provider, Native: native}
	}
	return s, nil
}
