package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Run handles the run command.
func Run(ctx context.Context, g Globals, configPath string, out io.Writer) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.finish()

	cfg, r, err := s.load(configPath)
	if err != nil {
		return err
	}

	record, err := r.RunInstances(ctx, cfg.Region, cfg.Name, cfg.Count, cfg.NodeSpec())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s cluster %s has %d running instances\n", color.HiGreenString("✓"), cfg.Name, cfg.Count)
	fmt.Fprintf(out, "  head:    %s\n", record.HeadInstanceID)
	fmt.Fprintf(out, "  resumed: %s\n", idList(record.ResumedInstanceIDs))
	fmt.Fprintf(out, "  created: %s\n", idList(record.CreatedInstanceIDs))
	return nil
}

func idList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
