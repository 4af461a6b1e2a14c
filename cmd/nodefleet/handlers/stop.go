package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Stop handles the stop command.
func Stop(ctx context.Context, g Globals, configPath string, workerOnly bool, out io.Writer) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.finish()

	cfg, r, err := s.load(configPath)
	if err != nil {
		return err
	}

	if err := r.StopInstances(ctx, cfg.Name, workerOnly); err != nil {
		return err
	}

	scope := "all instances"
	if workerOnly {
		scope = "all workers"
	}
	fmt.Fprintf(out, "%s stopped %s of cluster %s\n", color.HiGreenString("✓"), scope, cfg.Name)
	return nil
}
