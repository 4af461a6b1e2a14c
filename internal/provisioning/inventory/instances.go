package inventory

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/provisioning"
	"github.com/imamik/nodefleet/internal/util/naming"
)

// Option configures a directory.
type Option func(*options)

type options struct {
	log logr.Logger
}

// WithLogger sets the logger. The default discards.
func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func buildOptions(opts []Option) options {
	o := options{log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Instances is the instance directory of one provider.
type Instances struct {
	api provider.InstanceAPI
	log logr.Logger
}

// NewInstances creates an instance directory over api.
func NewInstances(api provider.InstanceAPI, opts ...Option) *Instances {
	o := buildOptions(opts)
	return &Instances{api: api, log: o.log}
}

// List returns the instances of cluster keyed by name. When statuses are
// given only instances in one of them are returned.
func (d *Instances) List(ctx context.Context, cluster string, statuses ...string) (map[string]provider.Instance, error) {
	out := make(map[string]provider.Instance)
	seen := make(map[string]bool)
	token := ""
	pages := 0

	for {
		page, err := d.api.ListInstances(ctx, cluster, token)
		if err != nil {
			return nil, fmt.Errorf("failed to list instances of cluster %s: %w", cluster, err)
		}
		pages++

		for _, inst := range page.Instances {
			if len(statuses) > 0 && !slices.Contains(statuses, inst.Status) {
				continue
			}
			if prev, ok := out[inst.Name]; ok && prev.ID != inst.ID {
				return nil, fmt.Errorf("cluster %s: instances %s and %s share the name %q", cluster, prev.ID, inst.ID, inst.Name)
			}
			out[inst.Name] = inst
		}

		if page.Next == "" {
			break
		}
		if seen[page.Next] {
			return nil, fmt.Errorf("failed to list instances of cluster %s: page token %q repeated", cluster, page.Next)
		}
		seen[page.Next] = true
		token = page.Next
	}

	d.log.V(2).Info("listed instances", "cluster", cluster, "statuses", statuses, "pages", pages, "count", len(out))
	return out, nil
}

// FindHead returns the head of instances. It fails with
// provisioning.ErrMultipleHeads when more than one instance carries the
// head role.
func FindHead(instances map[string]provider.Instance) (provider.Instance, bool, error) {
	var (
		head  provider.Instance
		found bool
	)
	for _, name := range sortedNames(instances) {
		inst := instances[name]
		if !inst.IsHead() {
			continue
		}
		if found {
			return provider.Instance{}, false, fmt.Errorf("%w: %s and %s", provisioning.ErrMultipleHeads, head.Name, inst.Name)
		}
		head, found = inst, true
	}
	return head, found, nil
}

// Promote renames inst to a fresh head name and sets its role label. It is
// used to repair a cluster whose head designation was lost.
func (d *Instances) Promote(ctx context.Context, cluster string, inst provider.Instance) (provider.Instance, error) {
	name := naming.Instance(cluster, string(provider.RoleHead))
	if err := d.api.Rename(ctx, inst.ID, name, provider.RoleHead); err != nil {
		return provider.Instance{}, fmt.Errorf("failed to promote instance %s to head: %w", inst.Name, err)
	}
	d.log.Info("promoted instance to head", "cluster", cluster, "id", inst.ID, "from", inst.Name, "to", name)

	inst.Name = name
	inst.Role = provider.RoleHead
	return inst, nil
}

// View observes cluster and builds a snapshot with its head resolved.
func (d *Instances) View(ctx context.Context, cluster, region string, statuses ...string) (provisioning.ClusterView, error) {
	instances, err := d.List(ctx, cluster, statuses...)
	if err != nil {
		return provisioning.ClusterView{}, err
	}
	view := provisioning.ClusterView{
		ClusterName: cluster,
		Region:      region,
		Instances:   instances,
	}
	head, ok, err := FindHead(instances)
	if err != nil {
		return provisioning.ClusterView{}, err
	}
	if ok {
		view.Head = &head
	}
	return view, nil
}

// CountByStatus returns how many instances are in each native status.
func CountByStatus(instances map[string]provider.Instance) map[string]int {
	counts := make(map[string]int)
	for _, inst := range instances {
		counts[inst.Status]++
	}
	return counts
}

func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
