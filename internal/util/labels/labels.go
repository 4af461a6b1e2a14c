package labels

import (
	"maps"
	"sort"
	"strings"
)

// Standard label keys for provider resources.
const (
	// KeyCluster identifies which cluster a resource belongs to
	KeyCluster = "nodefleet.io/cluster"

	// KeyRole identifies the role of an instance (head, worker)
	KeyRole = "nodefleet.io/role"

	// KeyInstance ties a volume to the instance it was created for
	KeyInstance = "nodefleet.io/instance"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "nodefleet.io/managed-by"
)

// Role values
const (
	RoleHead   = "head"
	RoleWorker = "worker"
)

// ManagedByNodefleet is the marker written to KeyManagedBy.
const ManagedByNodefleet = "nodefleet"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster name and
// management marker pre-set.
func NewLabelBuilder(clusterName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCluster:   clusterName,
			KeyManagedBy: ManagedByNodefleet,
		},
	}
}

// WithRole adds a role label (head or worker).
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// WithInstance records the owning instance id on a volume.
func (lb *LabelBuilder) WithInstance(instanceID string) *LabelBuilder {
	if instanceID != "" {
		lb.labels[KeyInstance] = instanceID
	}
	return lb
}

// Merge adds all labels from the provided map. Reserved keys are not
// overwritten.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		if IsReserved(k) {
			continue
		}
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	return maps.Clone(lb.labels)
}

// IsReserved reports whether key is owned by nodefleet.
func IsReserved(key string) bool {
	return strings.HasPrefix(key, "nodefleet.io/")
}

// SelectorForCluster returns a label selector string for all resources in a
// cluster that nodefleet manages.
func SelectorForCluster(clusterName string) string {
	return Selector(map[string]string{
		KeyCluster:   clusterName,
		KeyManagedBy: ManagedByNodefleet,
	})
}

// Selector renders a label map as a comma separated selector with stable key
// order.
func Selector(l map[string]string) string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+l[k])
	}
	return strings.Join(parts, ",")
}

// BelongsTo reports whether a label set marks a resource of clusterName.
func BelongsTo(l map[string]string, clusterName string) bool {
	return l[KeyCluster] == clusterName && l[KeyManagedBy] == ManagedByNodefleet
}
