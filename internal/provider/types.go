package provider

import (
	"github.com/imamik/nodefleet/internal/status"
	"github.com/imamik/nodefleet/internal/util/labels"
)

// Role designates an instance as the cluster head or a worker.
type Role string

const (
	RoleHead   Role = labels.RoleHead
	RoleWorker Role = labels.RoleWorker
)

// Instance is one remote compute node as observed from the provider.
type Instance struct {
	ID     string
	Name   string
	Role   Role
	Status string // provider-native lifecycle state
	Labels map[string]string

	// Addresses are only populated once the instance is active.
	InternalIP string
	ExternalIP string
}

// IsHead reports whether the instance is the designated head.
func (i Instance) IsHead() bool {
	return i.Role == RoleHead
}

// Volume is one block storage unit belonging to an instance.
type Volume struct {
	ID   string
	Name string
	// InstanceID is the instance the volume is attached to, if any.
	InstanceID string
	Labels     map[string]string
}

// OwnerID returns the instance the volume was created for, preferring the
// label written at creation over the current attachment.
func (v Volume) OwnerID() string {
	if id := v.Labels[labels.KeyInstance]; id != "" {
		return id
	}
	return v.InstanceID
}

// NodeSpec describes the shape of every instance in a cluster.
type NodeSpec struct {
	InstanceType string
	Image        string
	DiskSizeGB   int
	SSHKeys      []string
	Networks     []string
	Labels       map[string]string
}

// CreateInstanceRequest carries everything needed to create one instance.
type CreateInstanceRequest struct {
	Name   string
	Region string
	Spec   NodeSpec
	Labels map[string]string
}

// CreateVolumeRequest carries everything needed to create one volume.
type CreateVolumeRequest struct {
	Name       string
	Region     string
	SizeGB     int
	Filesystem string
	Labels     map[string]string
}

// InstancePage is one page of an instance listing.
type InstancePage struct {
	Instances []Instance
	Next      string
}

// VolumePage is one page of a volume listing.
type VolumePage struct {
	Volumes []Volume
	Next    string
}

// ActionStatus is the state of an asynchronous provider operation.
type ActionStatus string

const (
	ActionInProgress ActionStatus = "in-progress"
	ActionCompleted  ActionStatus = "completed"
	ActionErrored    ActionStatus = "errored"
)

// Action is a handle on an asynchronous provider operation.
type Action struct {
	ID      string
	Command string
	Status  ActionStatus
	Error   string
}

// Lifecycle groups a provider's native instance states.
type Lifecycle struct {
	// Pending states are transitional: the instance exists but is neither
	// serving nor settled off.
	Pending []string
	Active  []string
	Stopped []string

	// Projection maps every native state to the abstract lifecycle enum.
	Projection map[string]status.Status
}

// PendingOrActiveOrStopped returns every state that counts toward capacity.
func (l Lifecycle) PendingOrActiveOrStopped() []string {
	out := make([]string, 0, len(l.Pending)+len(l.Active)+len(l.Stopped))
	out = append(out, l.Pending...)
	out = append(out, l.Active...)
	return append(out, l.Stopped...)
}

// PendingOrStopped returns the states a resumed instance leaves on its way up.
func (l Lifecycle) PendingOrStopped() []string {
	out := make([]string, 0, len(l.Pending)+len(l.Stopped))
	out = append(out, l.Pending...)
	return append(out, l.Stopped...)
}
