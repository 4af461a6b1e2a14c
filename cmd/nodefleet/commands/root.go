// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imamik/nodefleet/cmd/nodefleet/handlers"
	"github.com/imamik/nodefleet/internal/logging"
)

// Global flag names. Each can also be set through the environment with the
// NODEFLEET_ prefix, e.g. NODEFLEET_LOG_LEVEL.
const (
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"
	FlagLogSource   = "log-source"
	FlagMetricsFile = "metrics-file"
)

// Root returns the root command for the nodefleet CLI.
func Root() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("nodefleet")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "nodefleet",
		Short:         "Reconcile clusters of cloud instances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Root().PersistentFlags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(FlagLogLevel, "info", "minimum log level (debug, info, warn, error)")
	flags.String(FlagLogFormat, logging.FormatAuto, "log format (auto, text, json)")
	flags.Bool(FlagLogSource, false, "add source code location to logs")
	flags.String(FlagMetricsFile, "", "write Prometheus metrics to this textfile after the command")

	globals := func() handlers.Globals {
		return handlers.Globals{
			LogLevel:    v.GetString(FlagLogLevel),
			LogFormat:   v.GetString(FlagLogFormat),
			LogSource:   v.GetBool(FlagLogSource),
			MetricsFile: v.GetString(FlagMetricsFile),
		}
	}

	cmd.AddCommand(Run(globals))
	cmd.AddCommand(Stop(globals))
	cmd.AddCommand(Terminate(globals))
	cmd.AddCommand(Query(globals))
	cmd.AddCommand(Info(globals))
	cmd.AddCommand(Version())

	return cmd
}

// globalsFunc resolves the global flags once they are bound.
type globalsFunc func() handlers.Globals

func configFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Path to cluster configuration file (required)")
	_ = cmd.MarkFlagRequired("config")
}
