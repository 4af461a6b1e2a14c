package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nodefleet/cmd/nodefleet/handlers"
)

// Info returns the info command.
func Info(globals globalsFunc) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the addresses of a running cluster as YAML",
		Long: `Info prints the head instance id and, for every running instance, its
internal and external address and SSH port.

Example:
  nodefleet info -c cluster.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Info(cmd.Context(), globals(), configPath, cmd.OutOrStdout())
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
