package provider

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from a provider API, normalised across
// backends.
type APIError struct {
	Provider   string
	Operation  string
	StatusCode int
	Reason     string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: error %d %s: %s", e.Provider, e.Operation, e.StatusCode, e.Reason, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err carries an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// ErrActionFailed is matched by errors for actions that ended errored.
var ErrActionFailed = errors.New("provider action failed")

// ActionError reports an action that finished in the errored state.
type ActionError struct {
	Action Action
}

func (e *ActionError) Error() string {
	msg := fmt.Sprintf("%s action %s %s", e.Action.Command, e.Action.ID, e.Action.Status)
	if e.Action.Error != "" {
		msg += ": " + e.Action.Error
	}
	return msg
}

func (e *ActionError) Is(target error) bool {
	return target == ErrActionFailed
}
