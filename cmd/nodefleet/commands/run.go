package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nodefleet/cmd/nodefleet/handlers"
)

// Run returns the run command.
func Run(globals globalsFunc) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bring a cluster up to its configured node count",
		Long: `Run reconciles the cluster described by the configuration file.

It waits for instances still being created by an earlier run, resumes
stopped instances, creates the missing ones (the head first when the
cluster has none) and waits until every instance is running.

Running the same configuration twice is safe: the second run finds the
cluster converged and creates nothing.

Example:
  nodefleet run -c cluster.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context(), globals(), configPath, cmd.OutOrStdout())
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
