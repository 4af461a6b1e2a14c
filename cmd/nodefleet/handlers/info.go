package handlers

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Info handles the info command.
func Info(ctx context.Context, g Globals, configPath string, out io.Writer) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.finish()

	cfg, r, err := s.load(configPath)
	if err != nil {
		return err
	}

	info, err := r.GetClusterInfo(ctx, cfg.Region, cfg.Name)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(info); err != nil {
		return fmt.Errorf("failed to encode cluster info: %w", err)
	}
	return enc.Close()
}
