package destroy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/imamik/nodefleet/internal/config"
	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/provisioning"
	"github.com/imamik/nodefleet/internal/provisioning/inventory"
	"github.com/imamik/nodefleet/internal/util/poll"
)

// Decommissioner tears clusters down.
type Decommissioner struct {
	client    provider.Client
	instances *inventory.Instances
	volumes   *inventory.Volumes
	lifecycle provider.Lifecycle
	settings  config.PollSettings
	sleep     poll.SleepFunc
	log       logr.Logger
}

// Option configures a Decommissioner.
type Option func(*Decommissioner)

// WithLogger sets the logger. The default discards.
func WithLogger(log logr.Logger) Option {
	return func(d *Decommissioner) {
		d.log = log
	}
}

// WithPollSettings overrides the wait bounds.
func WithPollSettings(s *config.PollSettings) Option {
	return func(d *Decommissioner) {
		if s != nil {
			d.settings = *s
		}
	}
}

// WithSleep replaces the sleep between poll attempts, mainly for tests.
func WithSleep(fn poll.SleepFunc) Option {
	return func(d *Decommissioner) {
		if fn != nil {
			d.sleep = fn
		}
	}
}

// NewDecommissioner creates a decommissioner for client.
func NewDecommissioner(client provider.Client, opts ...Option) *Decommissioner {
	d := &Decommissioner{
		client:    client,
		lifecycle: client.Lifecycle(),
		settings:  *config.DefaultPollSettings(),
		sleep:     poll.Sleep,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithName("decommissioner")
	d.instances = inventory.NewInstances(client, inventory.WithLogger(d.log))
	d.volumes = inventory.NewVolumes(client, inventory.WithLogger(d.log))
	return d
}

// Stop shuts down every instance of cluster, or every instance but the head
// when workerOnly is set, and waits until they report stopped.
func (d *Decommissioner) Stop(ctx context.Context, cluster string, workerOnly bool) error {
	start := provisioning.LogPhaseStart(d.log, cluster, provisioning.PhaseStop)

	all, err := d.instances.List(ctx, cluster)
	if err != nil {
		return err
	}
	selected := selectInstances(all, workerOnly)
	if len(selected) == 0 {
		d.log.Info("no instances to stop", "cluster", cluster, "workerOnly", workerOnly)
		return nil
	}

	for _, inst := range selected {
		if slices.Contains(d.lifecycle.Stopped, inst.Status) {
			continue
		}
		if err := d.client.Shutdown(ctx, inst.ID); err != nil {
			return fmt.Errorf("failed to stop instance %s: %w", inst.Name, err)
		}
		d.log.Info("stopping instance", "cluster", cluster, "name", inst.Name, "id", inst.ID)
	}

	// Instances that vanished meanwhile count as settled.
	ids := idSet(selected)
	err = poll.Until(ctx, func(ctx context.Context) (bool, int, error) {
		current, err := d.instances.List(ctx, cluster)
		if err != nil {
			return false, 0, err
		}
		settled := len(ids)
		for _, inst := range current {
			if ids[inst.ID] && !slices.Contains(d.lifecycle.Stopped, inst.Status) {
				settled--
			}
		}
		return settled == len(ids), settled, nil
	}, d.pollOptions(provisioning.PhaseStop, d.settings.LongMaxAttempts, len(ids))...)
	if err != nil {
		provisioning.LogPhaseFailed(d.log, cluster, provisioning.PhaseStop, err)
		return fmt.Errorf("failed to stop instances of cluster %s: %w", cluster, err)
	}

	provisioning.LogPhaseComplete(d.log, cluster, provisioning.PhaseStop, start)
	return nil
}

// Terminate destroys every instance of cluster, or every instance but the
// head when workerOnly is set, waits until they are gone and then deletes
// their volumes. Volume cleanup failures are reported, not returned.
func (d *Decommissioner) Terminate(ctx context.Context, cluster string, workerOnly bool) (*provisioning.CleanupReport, error) {
	start := provisioning.LogPhaseStart(d.log, cluster, provisioning.PhaseTerminate)

	all, err := d.instances.List(ctx, cluster)
	if err != nil {
		return nil, err
	}
	selected := selectInstances(all, workerOnly)

	for _, inst := range selected {
		d.log.V(1).Info("terminating instance", "cluster", cluster, "name", inst.Name, "id", inst.ID)
		if err := d.client.Destroy(ctx, inst.ID); err != nil {
			return nil, fmt.Errorf("failed to terminate instance %s: %w", inst.Name, err)
		}
	}

	ids := idSet(selected)
	if len(ids) > 0 {
		err = poll.Until(ctx, func(ctx context.Context) (bool, int, error) {
			current, err := d.instances.List(ctx, cluster)
			if err != nil {
				return false, 0, err
			}
			remaining := 0
			for _, inst := range current {
				if ids[inst.ID] {
					remaining++
				}
			}
			return remaining == 0, remaining, nil
		}, d.pollOptions(provisioning.PhaseTerminate, d.settings.LongMaxAttempts, 0)...)
		if err != nil {
			provisioning.LogPhaseFailed(d.log, cluster, provisioning.PhaseTerminate, err)
			return nil, fmt.Errorf("failed to delete all instances of cluster %s: %w", cluster, err)
		}
	}
	provisioning.LogPhaseComplete(d.log, cluster, provisioning.PhaseTerminate, start)

	return d.cleanupVolumes(ctx, cluster, workerOnly, ids), nil
}

// cleanupVolumes deletes the volumes of the terminated instances. Every
// attempt re-lists the volumes and deletes those still present.
func (d *Decommissioner) cleanupVolumes(ctx context.Context, cluster string, workerOnly bool, ids map[string]bool) *provisioning.CleanupReport {
	start := provisioning.LogPhaseStart(d.log, cluster, provisioning.PhaseCleanupVolumes)
	report := &provisioning.CleanupReport{}
	lastErr := make(map[string]error)
	var remaining map[string]provider.Volume

	err := poll.Until(ctx, func(ctx context.Context) (bool, int, error) {
		volumes, err := d.volumes.List(ctx, cluster)
		if err != nil {
			return false, 0, err
		}
		remaining = volumes
		if workerOnly {
			remaining = inventory.OwnedBy(volumes, ids)
		}
		if len(remaining) == 0 {
			return true, 0, nil
		}
		for _, name := range sortedNames(remaining) {
			v := remaining[name]
			if err := d.client.DeleteVolume(ctx, v.ID); err != nil {
				lastErr[v.ID] = err
				d.log.Info("failed to delete volume, will retry", "cluster", cluster, "volume", v.Name, "id", v.ID, "error", err.Error())
				continue
			}
			delete(lastErr, v.ID)
		}
		return false, len(remaining), nil
	}, d.pollOptions(provisioning.PhaseCleanupVolumes, d.settings.LongMaxAttempts, 0)...)

	if err == nil {
		provisioning.LogPhaseComplete(d.log, cluster, provisioning.PhaseCleanupVolumes, start)
		return report
	}

	for _, name := range sortedNames(remaining) {
		v := remaining[name]
		report.Add("volume", v.ID, volumeError(v, lastErr[v.ID]))
	}
	report.Add("volume-cleanup", cluster, err)
	d.log.Error(err, "volume cleanup incomplete, storage may be orphaned", "cluster", cluster, "remaining", len(remaining))
	return report
}

func volumeError(v provider.Volume, err error) error {
	if err == nil {
		err = errors.New("still present")
	}
	return fmt.Errorf("volume %s: %w", v.Name, err)
}

func (d *Decommissioner) pollOptions(phase provisioning.Phase, attempts, target int) []poll.Option {
	return []poll.Option{
		poll.WithPhase(string(phase)),
		poll.WithInterval(d.settings.Interval),
		poll.WithMaxAttempts(attempts),
		poll.WithTarget(target),
		poll.WithSleep(d.sleep),
	}
}

// selectInstances returns the instances to act on in name order.
func selectInstances(all map[string]provider.Instance, workerOnly bool) []provider.Instance {
	ordered := lo.Map(sortedNames(all), func(name string, _ int) provider.Instance {
		return all[name]
	})
	if !workerOnly {
		return ordered
	}
	return lo.Reject(ordered, func(inst provider.Instance, _ int) bool {
		return inst.IsHead()
	})
}

func idSet(instances []provider.Instance) map[string]bool {
	return lo.Associate(instances, func(inst provider.Instance) (string, bool) {
		return inst.ID, true
	})
}

func sortedNames[T any](m map[string]T) []string {
	names := lo.Keys(m)
	slices.Sort(names)
	return names
}
