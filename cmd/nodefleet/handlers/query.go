package handlers

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/imamik/nodefleet/internal/orchestration"
	"github.com/imamik/nodefleet/internal/status"
	"github.com/imamik/nodefleet/internal/util/async"
)

// queryParallelism bounds how many clusters are queried at once.
const queryParallelism = 8

// Query handles the query command. Every configuration is queried in
// parallel. Clusters that answered are printed even when others failed;
// every failure is returned.
func Query(ctx context.Context, g Globals, configPaths []string, out io.Writer) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.finish()

	reconcilers := make(map[string]*orchestration.Reconciler, len(configPaths))
	names := make([]string, 0, len(configPaths))
	for _, path := range configPaths {
		cfg, r, err := s.load(path)
		if err != nil {
			return err
		}
		if _, dup := reconcilers[cfg.Name]; dup {
			return fmt.Errorf("cluster %s is configured twice", cfg.Name)
		}
		reconcilers[cfg.Name] = r
		names = append(names, cfg.Name)
	}

	results, err := async.Collect(ctx, names, queryParallelism,
		func(ctx context.Context, cluster string) (map[string]status.Status, error) {
			return reconcilers[cluster].QueryInstances(ctx, cluster)
		})
	if len(results) > 0 {
		renderStatuses(out, results)
	}
	if err != nil {
		return fmt.Errorf("failed to query clusters:\n%w", err)
	}
	return nil
}

func renderStatuses(out io.Writer, results map[string]map[string]status.Status) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLUSTER\tINSTANCE\tSTATUS")
	for _, cluster := range slices.Sorted(maps.Keys(results)) {
		statuses := results[cluster]
		if len(statuses) == 0 {
			fmt.Fprintf(tw, "%s\t-\t%s\n", cluster, color.HiBlackString("no instances"))
			continue
		}
		for _, id := range slices.Sorted(maps.Keys(statuses)) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", cluster, id, colorStatus(statuses[id]))
		}
	}
	_ = tw.Flush()
}

func colorStatus(s status.Status) string {
	switch s {
	case status.Up:
		return color.HiGreenString(s.String())
	case status.Init:
		return color.HiYellowString(s.String())
	case status.Stopped:
		return color.HiBlueString(s.String())
	default:
		return color.HiRedString(s.String())
	}
}
