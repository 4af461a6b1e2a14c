package compute

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/imamik/nodefleet/internal/config"
	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/provisioning"
	"github.com/imamik/nodefleet/internal/provisioning/inventory"
	"github.com/imamik/nodefleet/internal/util/labels"
	"github.com/imamik/nodefleet/internal/util/naming"
	"github.com/imamik/nodefleet/internal/util/poll"
)

// Request describes the desired state of a cluster.
type Request struct {
	Region  string
	Cluster string
	Count   int
	Spec    provider.NodeSpec
}

// Provisioner drives a cluster toward Request.Count active instances.
type Provisioner struct {
	client    provider.Client
	instances *inventory.Instances
	lifecycle provider.Lifecycle
	settings  config.PollSettings
	sleep     poll.SleepFunc
	log       logr.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the logger. The default discards.
func WithLogger(log logr.Logger) Option {
	return func(p *Provisioner) {
		p.log = log
	}
}

// WithPollSettings overrides the wait bounds.
func WithPollSettings(s *config.PollSettings) Option {
	return func(p *Provisioner) {
		if s != nil {
			p.settings = *s
		}
	}
}

// WithSleep replaces the sleep between poll attempts, mainly for tests.
func WithSleep(fn poll.SleepFunc) Option {
	return func(p *Provisioner) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// NewProvisioner creates a provisioner for client.
func NewProvisioner(client provider.Client, opts ...Option) *Provisioner {
	p := &Provisioner{
		client:    client,
		lifecycle: client.Lifecycle(),
		settings:  *config.DefaultPollSettings(),
		sleep:     poll.Sleep,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithName("provisioner")
	p.instances = inventory.NewInstances(client, inventory.WithLogger(p.log))
	return p
}

// Run converges req.Cluster on req.Count active instances and reports
// which instances were resumed and created.
func (p *Provisioner) Run(ctx context.Context, req Request) (*provisioning.Record, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("cluster %s: desired count must be at least 1, got %d", req.Cluster, req.Count)
	}
	log := p.log.WithValues("cluster", req.Cluster, "region", req.Region)

	// Drain pending.
	if err := p.phase(log, req.Cluster, provisioning.PhaseDrainPending, func() error {
		return p.drainPending(ctx, req.Cluster)
	}); err != nil {
		return nil, err
	}

	// Capacity check.
	if err := p.phase(log, req.Cluster, provisioning.PhaseReconcileCount, func() error {
		existing, err := p.instances.List(ctx, req.Cluster, p.lifecycle.PendingOrActiveOrStopped()...)
		if err != nil {
			return err
		}
		log.V(1).Info("observed instances", "count", len(existing), "statuses", inventory.CountByStatus(existing))
		if len(existing) > req.Count {
			return &provisioning.OverProvisionedError{Cluster: req.Cluster, Existing: len(existing), Desired: req.Count}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// Resume stopped.
	var resumed []string
	if err := p.phase(log, req.Cluster, provisioning.PhaseResumeStopped, func() error {
		var err error
		resumed, err = p.resumeStopped(ctx, log, req.Cluster)
		return err
	}); err != nil {
		return nil, err
	}

	record := &provisioning.Record{
		Provider:           p.client.Name(),
		ClusterName:        req.Cluster,
		Region:             req.Region,
		ResumedInstanceIDs: resumed,
		CreatedInstanceIDs: []string{},
	}

	// Recompute deficit.
	view, err := p.instances.View(ctx, req.Cluster, req.Region, p.lifecycle.Active...)
	if err != nil {
		return nil, err
	}
	deficit := req.Count - len(view.Instances)
	if deficit < 0 {
		return nil, &provisioning.OverProvisionedError{Cluster: req.Cluster, Existing: len(view.Instances), Desired: req.Count}
	}
	if view.Head != nil && naming.RoleFromName(view.Head.Name) != labels.RoleHead {
		// A rename interrupted after the role label was written.
		head, err := p.instances.Promote(ctx, req.Cluster, *view.Head)
		if err != nil {
			return nil, err
		}
		view.Head = &head
	}
	if view.Head != nil {
		record.HeadInstanceID = view.Head.ID
	}
	log.Info("observed active instances", "active", len(view.Instances), "desired", req.Count, "deficit", deficit)

	if deficit == 0 {
		if view.Head == nil {
			head, err := p.promoteAny(ctx, req.Cluster, view)
			if err != nil {
				return nil, err
			}
			record.HeadInstanceID = head.ID
		}
		p.logPhase(log, req.Cluster, provisioning.PhaseDone)
		return record, nil
	}

	// Create.
	if err := p.phase(log, req.Cluster, provisioning.PhaseCreate, func() error {
		for range deficit {
			role := provider.RoleWorker
			if record.HeadInstanceID == "" {
				role = provider.RoleHead
			}
			inst, err := p.createOne(ctx, log, req, role)
			if err != nil {
				return err
			}
			record.CreatedInstanceIDs = append(record.CreatedInstanceIDs, inst.ID)
			if role == provider.RoleHead {
				record.HeadInstanceID = inst.ID
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// Wait active.
	if err := p.phase(log, req.Cluster, provisioning.PhaseWaitActive, func() error {
		return p.waitActive(ctx, req)
	}); err != nil {
		return nil, err
	}

	p.logPhase(log, req.Cluster, provisioning.PhaseDone)
	return record, nil
}

func (p *Provisioner) drainPending(ctx context.Context, cluster string) error {
	pending, err := p.instances.List(ctx, cluster, p.lifecycle.Pending...)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	p.log.Info("waiting for pending instances of a previous run", "cluster", cluster, "pending", len(pending))

	return poll.Until(ctx, func(ctx context.Context) (bool, int, error) {
		pending, err := p.instances.List(ctx, cluster, p.lifecycle.Pending...)
		if err != nil {
			return false, 0, err
		}
		return len(pending) == 0, len(pending), nil
	}, p.pollOptions(provisioning.PhaseDrainPending, p.settings.MaxAttempts, 0)...)
}

func (p *Provisioner) resumeStopped(ctx context.Context, log logr.Logger, cluster string) ([]string, error) {
	stopped, err := p.instances.List(ctx, cluster, p.lifecycle.Stopped...)
	if err != nil {
		return nil, err
	}
	resumed := make([]string, 0, len(stopped))
	if len(stopped) == 0 {
		return resumed, nil
	}

	for _, name := range sortedNames(stopped) {
		inst := stopped[name]
		if err := p.client.PowerOn(ctx, inst.ID); err != nil {
			return nil, fmt.Errorf("failed to power on instance %s: %w", inst.Name, err)
		}
		log.Info("resuming stopped instance", "name", inst.Name, "id", inst.ID)
		resumed = append(resumed, inst.ID)
	}

	err = poll.Until(ctx, func(ctx context.Context) (bool, int, error) {
		waiting, err := p.instances.List(ctx, cluster, p.lifecycle.PendingOrStopped()...)
		if err != nil {
			return false, 0, err
		}
		return len(waiting) == 0, len(waiting), nil
	}, p.pollOptions(provisioning.PhaseResumeStopped, p.settings.LongMaxAttempts, 0)...)
	if err != nil {
		return nil, err
	}
	return resumed, nil
}

// promoteAny repairs a headless cluster by renaming its first instance.
func (p *Provisioner) promoteAny(ctx context.Context, cluster string, view provisioning.ClusterView) (provider.Instance, error) {
	names := sortedNames(view.Instances)
	if len(names) == 0 {
		return provider.Instance{}, fmt.Errorf("cluster %s: %w", cluster, provisioning.ErrNoHead)
	}
	return p.instances.Promote(ctx, cluster, view.Instances[names[0]])
}

func (p *Provisioner) waitActive(ctx context.Context, req Request) error {
	err := poll.Until(ctx, func(ctx context.Context) (bool, int, error) {
		active, err := p.instances.List(ctx, req.Cluster, p.lifecycle.Active...)
		if err != nil {
			return false, 0, err
		}
		return len(active) == req.Count, len(active), nil
	}, p.pollOptions(provisioning.PhaseWaitActive, p.settings.LongMaxAttempts, req.Count)...)

	var timeout *poll.TimeoutError
	if errors.As(err, &timeout) {
		return &provisioning.CapacityExhaustedError{Cluster: req.Cluster, Region: req.Region, Timeout: timeout}
	}
	return err
}

func (p *Provisioner) pollOptions(phase provisioning.Phase, attempts, target int) []poll.Option {
	return []poll.Option{
		poll.WithPhase(string(phase)),
		poll.WithInterval(p.settings.Interval),
		poll.WithMaxAttempts(attempts),
		poll.WithTarget(target),
		poll.WithSleep(p.sleep),
	}
}

func (p *Provisioner) phase(log logr.Logger, cluster string, phase provisioning.Phase, fn func() error) error {
	start := provisioning.LogPhaseStart(log, cluster, phase)
	if err := fn(); err != nil {
		provisioning.LogPhaseFailed(log, cluster, phase, err)
		return err
	}
	provisioning.LogPhaseComplete(log, cluster, phase, start)
	return nil
}

func (p *Provisioner) logPhase(log logr.Logger, cluster string, phase provisioning.Phase) {
	log.V(1).Info("phase reached", "cluster", cluster, "phase", string(phase))
}

func sortedNames(m map[string]provider.Instance) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
