package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/imamik/nodefleet/internal/config"
	"github.com/imamik/nodefleet/internal/metrics"
	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/provisioning"
	"github.com/imamik/nodefleet/internal/provisioning/compute"
	"github.com/imamik/nodefleet/internal/provisioning/destroy"
	"github.com/imamik/nodefleet/internal/provisioning/inventory"
	"github.com/imamik/nodefleet/internal/status"
	"github.com/imamik/nodefleet/internal/util/labels"
	"github.com/imamik/nodefleet/internal/util/poll"
)

// SSHPort is the port reported for every instance.
const SSHPort = 22

// Reconciler runs the caller-facing operations against one provider.
type Reconciler struct {
	client         provider.Client
	projector      *status.Projector
	instances      *inventory.Instances
	provisioner    *compute.Provisioner
	decommissioner *destroy.Decommissioner
	recorder       *metrics.Recorder
	log            logr.Logger
}

type options struct {
	log      logr.Logger
	settings *config.PollSettings
	sleep    poll.SleepFunc
	recorder *metrics.Recorder
}

// Option configures a Reconciler.
type Option func(*options)

// WithLogger sets the logger. The default discards.
func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithPollSettings overrides the wait bounds of every phase.
func WithPollSettings(s *config.PollSettings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithSleep replaces the sleep between poll attempts, mainly for tests.
func WithSleep(fn poll.SleepFunc) Option {
	return func(o *options) {
		o.sleep = fn
	}
}

// WithRecorder records operation and provider API metrics.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(o *options) {
		o.recorder = rec
	}
}

// NewReconciler creates a reconciler for client.
func NewReconciler(client provider.Client, opts ...Option) *Reconciler {
	o := options{log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	client = metrics.Instrument(client, o.recorder)
	log := o.log.WithValues("provider", client.Name())

	return &Reconciler{
		client:    client,
		projector: status.NewProjector(client.Name(), client.Lifecycle().Projection),
		instances: inventory.NewInstances(client, inventory.WithLogger(log)),
		provisioner: compute.NewProvisioner(client,
			compute.WithLogger(log),
			compute.WithPollSettings(o.settings),
			compute.WithSleep(o.sleep),
		),
		decommissioner: destroy.NewDecommissioner(client,
			destroy.WithLogger(log),
			destroy.WithPollSettings(o.settings),
			destroy.WithSleep(o.sleep),
		),
		recorder: o.recorder,
		log:      log,
	}
}

// RunInstances converges cluster on count active instances of spec.
func (r *Reconciler) RunInstances(ctx context.Context, region, cluster string, count int, spec provider.NodeSpec) (record *provisioning.Record, err error) {
	defer r.observe(cluster, "run", time.Now(), &err)

	r.log.Info("running instances", "cluster", cluster, "region", region, "count", count)
	record, err = r.provisioner.Run(ctx, compute.Request{
		Region:  region,
		Cluster: cluster,
		Count:   count,
		Spec:    spec,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run instances of cluster %s: %w", cluster, err)
	}
	r.log.Info("instances running", "cluster", cluster, "head", record.HeadInstanceID,
		"resumed", len(record.ResumedInstanceIDs), "created", len(record.CreatedInstanceIDs))
	return record, nil
}

// StopInstances shuts down the instances of cluster, sparing the head when
// workerOnly is set.
func (r *Reconciler) StopInstances(ctx context.Context, cluster string, workerOnly bool) (err error) {
	defer r.observe(cluster, "stop", time.Now(), &err)

	r.log.Info("stopping instances", "cluster", cluster, "workerOnly", workerOnly)
	return r.decommissioner.Stop(ctx, cluster, workerOnly)
}

// TerminateInstances destroys the instances of cluster and their volumes,
// sparing the head when workerOnly is set. The report lists volumes the
// best-effort cleanup could not remove.
func (r *Reconciler) TerminateInstances(ctx context.Context, cluster string, workerOnly bool) (report *provisioning.CleanupReport, err error) {
	defer r.observe(cluster, "terminate", time.Now(), &err)

	r.log.Info("terminating instances", "cluster", cluster, "workerOnly", workerOnly)
	return r.decommissioner.Terminate(ctx, cluster, workerOnly)
}

// WaitInstances is a no-op: RunInstances only returns once the instances
// are active.
func (r *Reconciler) WaitInstances(_ context.Context, _, cluster string, state status.Status) error {
	r.log.V(1).Info("wait is satisfied by run", "cluster", cluster, "state", state.String())
	return nil
}

// QueryInstances returns the lifecycle state of every instance of cluster
// keyed by instance id.
func (r *Reconciler) QueryInstances(ctx context.Context, cluster string) (statuses map[string]status.Status, err error) {
	defer r.observe(cluster, "query", time.Now(), &err)

	instances, err := r.instances.List(ctx, cluster)
	if err != nil {
		return nil, err
	}

	statuses = make(map[string]status.Status, len(instances))
	counts := make(map[string]int)
	for _, inst := range instances {
		st, err := r.projector.Project(inst.Status)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", inst.Name, err)
		}
		statuses[inst.ID] = st
		counts[st.String()]++
	}
	r.recorder.RecordInstances(cluster, counts)
	return statuses, nil
}

// GetClusterInfo describes the active instances of cluster. Every active
// instance must have both an internal and an external address.
func (r *Reconciler) GetClusterInfo(ctx context.Context, region, cluster string) (info *provisioning.ClusterInfo, err error) {
	defer r.observe(cluster, "info", time.Now(), &err)

	view, err := r.instances.View(ctx, cluster, region, r.client.Lifecycle().Active...)
	if err != nil {
		return nil, err
	}
	if view.Head == nil {
		return nil, fmt.Errorf("cluster %s: %w among %d active instances", cluster, provisioning.ErrNoHead, len(view.Instances))
	}

	info = &provisioning.ClusterInfo{
		Provider:       r.client.Name(),
		HeadInstanceID: view.Head.ID,
		Instances:      make(map[string][]provisioning.InstanceInfo, len(view.Instances)),
	}
	for name, inst := range view.Instances {
		if inst.InternalIP == "" || inst.ExternalIP == "" {
			return nil, fmt.Errorf("instance %s: both internal and external IPv4 addresses are required (internal %q, external %q)",
				name, inst.InternalIP, inst.ExternalIP)
		}
		info.Instances[name] = []provisioning.InstanceInfo{{
			InstanceID: inst.ID,
			InternalIP: inst.InternalIP,
			ExternalIP: inst.ExternalIP,
			SSHPort:    SSHPort,
			Tags:       userTags(inst.Labels),
		}}
	}
	return info, nil
}

// OpenPorts is a no-op: firewalling is not managed.
func (r *Reconciler) OpenPorts(_ context.Context, cluster string, ports []string) error {
	r.log.V(1).Info("port management not supported, ignoring", "cluster", cluster, "ports", ports)
	return nil
}

// CleanupPorts is a no-op: firewalling is not managed.
func (r *Reconciler) CleanupPorts(_ context.Context, cluster string, ports []string) error {
	r.log.V(1).Info("port management not supported, ignoring", "cluster", cluster, "ports", ports)
	return nil
}

func (r *Reconciler) observe(cluster, operation string, start time.Time, err *error) {
	r.recorder.RecordOperation(cluster, operation, *err, time.Since(start))
}

// userTags drops the labels owned by nodefleet.
func userTags(l map[string]string) map[string]string {
	tags := lo.OmitBy(l, func(k, _ string) bool {
		return labels.IsReserved(k)
	})
	if len(tags) == 0 {
		return nil
	}
	return tags
}
