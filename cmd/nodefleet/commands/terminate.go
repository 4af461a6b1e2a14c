package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nodefleet/cmd/nodefleet/handlers"
)

// Terminate returns the terminate command.
func Terminate(globals globalsFunc) *cobra.Command {
	var (
		configPath string
		workerOnly bool
	)

	cmd := &cobra.Command{
		Use:   "terminate",
		Short: "Delete the instances of a cluster and their volumes",
		Long: `Terminate deletes the instances of the cluster, waits until they are gone
and then removes their volumes. With --worker-only the head and its volume
are kept.

Volumes that cannot be removed are reported but do not fail the command.

Example:
  nodefleet terminate -c cluster.yaml

WARNING: This operation is irreversible. All instance data will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Terminate(cmd.Context(), globals(), configPath, workerOnly, cmd.OutOrStdout())
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&workerOnly, "worker-only", false, "Keep the head instance and its volume")
	return cmd
}
