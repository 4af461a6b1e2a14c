package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Terminate handles the terminate command. Volumes left behind are printed
// as warnings; they do not fail the command.
func Terminate(ctx context.Context, g Globals, configPath string, workerOnly bool, out io.Writer) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.finish()

	cfg, r, err := s.load(configPath)
	if err != nil {
		return err
	}

	report, err := r.TerminateInstances(ctx, cfg.Name, workerOnly)
	if err != nil {
		return err
	}

	if report.HasFailures() {
		fmt.Fprintf(out, "%s cluster %s terminated, but some resources were left behind:\n", color.HiYellowString("!"), cfg.Name)
		for _, f := range report.Failures {
			fmt.Fprintf(out, "  %s %s: %s\n", f.Resource, f.ID, f.Message)
		}
		return nil
	}

	fmt.Fprintf(out, "%s cluster %s terminated\n", color.HiGreenString("✓"), cfg.Name)
	return nil
}
