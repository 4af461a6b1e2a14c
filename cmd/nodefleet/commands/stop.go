package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nodefleet/cmd/nodefleet/handlers"
)

// Stop returns the stop command.
func Stop(globals globalsFunc) *cobra.Command {
	var (
		configPath string
		workerOnly bool
	)

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Power off the instances of a cluster",
		Long: `Stop shuts down every instance of the cluster and waits until they are off.
With --worker-only the head keeps running.

Stopped instances keep their volumes and are resumed by the next run.

Example:
  nodefleet stop -c cluster.yaml --worker-only`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Stop(cmd.Context(), globals(), configPath, workerOnly, cmd.OutOrStdout())
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&workerOnly, "worker-only", false, "Leave the head instance running")
	return cmd
}
