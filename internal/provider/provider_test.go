package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/nodefleet/internal/util/labels"
)

func TestLifecycle_Groups(t *testing.T) {
	t.Parallel()
	l := Lifecycle{
		Pending: []string{"new"},
		Active:  []string{"active"},
		Stopped: []string{"off"},
	}

	assert.Equal(t, []string{"new", "active", "off"}, l.PendingOrActiveOrStopped())
	assert.Equal(t, []string{"new", "off"}, l.PendingOrStopped())
}

func TestVolume_OwnerID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		vol  Volume
		want string
	}{
		{"label wins", Volume{InstanceID: "2", Labels: map[string]string{labels.KeyInstance: "1"}}, "1"},
		{"attachment fallback", Volume{InstanceID: "2"}, "2"},
		{"detached and unlabelled", Volume{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.vol.OwnerID())
		})
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	err := fmt.Errorf("create: %w", &APIError{
		Provider:   "hcloud",
		Operation:  "create server",
		StatusCode: 422,
		Reason:     "invalid_input",
		Message:    "name is taken",
		Err:        inner,
	})

	assert.True(t, IsAPIError(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "422 invalid_input: name is taken")
	assert.False(t, IsAPIError(inner))
}

func TestActionError(t *testing.T) {
	t.Parallel()
	err := &ActionError{Action: Action{ID: "7", Command: "attach_volume", Status: ActionErrored, Error: "volume busy"}}

	assert.ErrorIs(t, err, ErrActionFailed)
	assert.Equal(t, "attach_volume action 7 errored: volume busy", err.Error())
}

func TestInstance_IsHead(t *testing.T) {
	t.Parallel()
	assert.True(t, Instance{Role: RoleHead}.IsHead())
	assert.False(t, Instance{Role: RoleWorker}.IsHead())
	assert.False(t, Instance{}.IsHead())
}
