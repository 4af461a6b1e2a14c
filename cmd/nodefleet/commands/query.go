package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nodefleet/cmd/nodefleet/handlers"
)

// Query returns the query command.
func Query(globals globalsFunc) *cobra.Command {
	var configPaths []string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show the status of every instance of one or more clusters",
		Long: `Query lists every instance of each cluster with its status
(INIT, UP, STOPPED or UNKNOWN). Several clusters are queried in parallel.

Example:
  nodefleet query -c a.yaml -c b.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Query(cmd.Context(), globals(), configPaths, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVarP(&configPaths, "config", "c", nil, "Path to cluster configuration file (repeatable, required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
