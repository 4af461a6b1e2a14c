package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nodefleet/cmd/nodefleet/handlers"
)

func TestRoot_Subcommands(t *testing.T) {
	cmd := Root()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "stop", "terminate", "query", "info", "version"}, names)
}

func TestRoot_GlobalFlags(t *testing.T) {
	cmd := Root()

	tests := []struct {
		name string
		def  string
	}{
		{FlagLogLevel, "info"},
		{FlagLogFormat, "auto"},
		{FlagLogSource, "false"},
		{FlagMetricsFile, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestConfigFlagRequired(t *testing.T) {
	noGlobals := func() handlers.Globals { return handlers.Globals{} }

	for _, cmd := range []*cobra.Command{
		Run(noGlobals),
		Stop(noGlobals),
		Terminate(noGlobals),
		Query(noGlobals),
		Info(noGlobals),
	} {
		t.Run(cmd.Use, func(t *testing.T) {
			flag := cmd.Flags().Lookup("config")
			require.NotNil(t, flag, "config flag should exist")
			assert.Equal(t, "c", flag.Shorthand)
			_, required := flag.Annotations[cobra.BashCompOneRequiredFlag]
			assert.True(t, required)
			assert.NotNil(t, cmd.RunE)
		})
	}
}

func TestWorkerOnlyFlag(t *testing.T) {
	noGlobals := func() handlers.Globals { return handlers.Globals{} }

	for _, cmd := range []*cobra.Command{Stop(noGlobals), Terminate(noGlobals)} {
		flag := cmd.Flags().Lookup("worker-only")
		require.NotNil(t, flag, cmd.Use)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestRoot_MissingConfig(t *testing.T) {
	cmd := Root()
	cmd.SetArgs([]string{"run"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, `required flag(s) "config" not set`)
}

func TestRoot_EnvBinding(t *testing.T) {
	t.Setenv("NODEFLEET_LOG_LEVEL", "loud")

	cmd := Root()
	cmd.SetArgs([]string{"run", "-c", "cluster.yaml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	// The bogus level from the environment reaches the logger before the
	// config file is read.
	err := cmd.Execute()
	assert.ErrorContains(t, err, "failed to parse log level")
}

func TestVersion_Output(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer func() {
		version, commit, date = origVersion, origCommit, origDate
	}()

	SetVersionInfo("1.2.3", "abc123", "2024-01-01")

	var out bytes.Buffer
	cmd := Version()
	cmd.SetArgs([]string{})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "nodefleet 1.2.3")
	assert.Contains(t, out.String(), "commit: abc123")
	assert.Contains(t, out.String(), "built:  2024-01-01")
}
