package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjector_Project(t *testing.T) {
	t.Parallel()
	p := NewProjector("do", map[string]Status{
		"new":     Init,
		"archive": Init,
		"active":  Up,
		"off":     Stopped,
		"unknown": Unknown,
	})

	tests := []struct {
		native string
		want   Status
	}{
		{"new", Init},
		{"archive", Init},
		{"active", Up},
		{"off", Stopped},
		{"unknown", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			t.Parallel()
			got, err := p.Project(tt.native)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjector_UnmappedFailsLoudly(t *testing.T) {
	t.Parallel()
	p := NewProjector("hcloud", map[string]Status{"running": Up})

	_, err := p.Project("hibernating")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappedStatus)

	var unmapped *UnmappedError
	require.ErrorAs(t, err, &unmapped)
	assert.Equal(t, "hibernating", unmapped.Native)
	assert.Contains(t, err.Error(), "hcloud")
}

func TestProjector_TableIsCopied(t *testing.T) {
	t.Parallel()
	table := map[string]Status{"running": Up}
	p := NewProjector("x", table)
	table["running"] = Stopped

	got, err := p.Project("running")
	require.NoError(t, err)
	assert.Equal(t, Up, got)
}

func TestStatus_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "INIT", Init.String())
	assert.Equal(t, "UP", Up.String())
	assert.Equal(t, "STOPPED", Stopped.String())
	assert.Equal(t, "UNKNOWN", Unknown.String())
	assert.Equal(t, "UNKNOWN", Status(42).String())
}

func TestStatus_MarshalJSON(t *testing.T) {
	t.Parallel()
	out, err := json.Marshal(map[string]Status{"1": Up})
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"UP"}`, string(out))
}
