// Package fake provides an in-memory provider.Client that simulates
// asynchronous instance transitions.
//
// Every full listing (a ListInstances call with an empty page token) counts
// as one tick of the simulated clock. Pending instances become active,
// stopping instances become off and destroyed instances disappear after a
// configurable number of ticks. This makes reconciler tests deterministic
// without any real sleeping.
package fake

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/status"
	"github.com/imamik/nodefleet/internal/util/labels"
	"github.com/imamik/nodefleet/internal/util/naming"
)

// Native states of the simulated provider.
const (
	StatusNew     = "new"
	StatusActive  = "active"
	StatusOff     = "off"
	StatusArchive = "archive"
)

// Lifecycle is the simulated provider's state table.
var Lifecycle = provider.Lifecycle{
	Pending: []string{StatusNew},
	Active:  []string{StatusActive},
	Stopped: []string{StatusOff},
	Projection: map[string]status.Status{
		StatusNew:     status.Init,
		StatusArchive: status.Init,
		StatusActive:  status.Up,
		StatusOff:     status.Stopped,
	},
}

type instance struct {
	provider.Instance
	ticksLeft  int
	target     string // state reached when ticksLeft hits zero
	destroying bool
}

type action struct {
	provider.Action
	pollsLeft int
	fail      bool
}

// Cloud simulates a provider account.
type Cloud struct {
	mu sync.Mutex

	// PageSize is the number of items per listing page.
	PageSize int
	// BootTicks is how many listings a new or resumed instance stays pending.
	BootTicks int
	// StopTicks is how many listings a shutdown takes.
	StopTicks int
	// DestroyTicks is how many listings a destroyed instance stays visible.
	DestroyTicks int
	// ActionPolls is how many GetAction calls an action stays in progress.
	ActionPolls int
	// NeverActivate keeps created and resumed instances pending forever.
	NeverActivate bool
	// FailAttach makes every attach action end errored.
	FailAttach bool
	// NoExternalIP brings instances up with an internal address only.
	NoExternalIP bool

	// CreateErr, DestroyErr and DeleteVolumeErr inject API failures.
	CreateErr       error
	DestroyErr      map[string]error
	DeleteVolumeErr map[string]error
	// ListErr fails every listing.
	ListErr error

	instances map[string]*instance
	volumes   map[string]provider.Volume
	actions   map[string]*action
	nextID    int

	// Calls counts API calls by method name.
	Calls map[string]int
}

// New creates an empty simulated cloud with small pages so that tests
// exercise pagination.
func New() *Cloud {
	return &Cloud{
		PageSize:        2,
		BootTicks:       1,
		StopTicks:       1,
		DestroyTicks:    1,
		ActionPolls:     1,
		DestroyErr:      make(map[string]error),
		DeleteVolumeErr: make(map[string]error),
		instances:       make(map[string]*instance),
		volumes:         make(map[string]provider.Volume),
		actions:         make(map[string]*action),
		nextID:          1,
		Calls:           make(map[string]int),
	}
}

var _ provider.Client = (*Cloud)(nil)

// Name implements provider.Client.
func (c *Cloud) Name() string { return "fake" }

// Lifecycle implements provider.Client.
func (c *Cloud) Lifecycle() provider.Lifecycle { return Lifecycle }

func (c *Cloud) id() string {
	id := strconv.Itoa(c.nextID)
	c.nextID++
	return id
}

// AddInstance seeds an instance of cluster in the given state and returns it.
// An empty role leaves the role label unset.
func (c *Cloud) AddInstance(cluster, name string, role provider.Role, state string) provider.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()

	lb := labels.NewLabelBuilder(cluster)
	if role != "" {
		lb.WithRole(string(role))
	}
	inst := &instance{Instance: provider.Instance{
		ID:     c.id(),
		Name:   name,
		Role:   roleOf(lb.Build(), name),
		Status: state,
		Labels: lb.Build(),
	}}
	switch state {
	case StatusActive:
		c.assignAddresses(inst)
	case StatusNew:
		c.boot(inst)
	}
	c.instances[inst.ID] = inst
	return cloneInstance(inst.Instance)
}

// AddVolume seeds a volume of cluster.
func (c *Cloud) AddVolume(cluster, name, instanceID string) provider.Volume {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := provider.Volume{
		ID:         c.id(),
		Name:       name,
		InstanceID: instanceID,
		Labels:     labels.NewLabelBuilder(cluster).WithInstance(instanceID).Build(),
	}
	c.volumes[v.ID] = v
	return v
}

// Instances returns a snapshot of every instance.
func (c *Cloud) Instances() []provider.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]provider.Instance, 0, len(c.instances))
	for _, id := range slices.Sorted(maps.Keys(c.instances)) {
		out = append(out, cloneInstance(c.instances[id].Instance))
	}
	return out
}

// Volumes returns a snapshot of every volume.
func (c *Cloud) Volumes() []provider.Volume {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]provider.Volume, 0, len(c.volumes))
	for _, id := range slices.Sorted(maps.Keys(c.volumes)) {
		out = append(out, c.volumes[id])
	}
	return out
}

// CallCount returns how often method was called.
func (c *Cloud) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

// ListInstances implements provider.InstanceAPI.
func (c *Cloud) ListInstances(_ context.Context, cluster, pageToken string) (provider.InstancePage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["ListInstances"]++

	if c.ListErr != nil {
		return provider.InstancePage{}, c.ListErr
	}
	if pageToken == "" {
		c.tick()
	}

	var matching []provider.Instance
	for _, id := range slices.Sorted(maps.Keys(c.instances)) {
		inst := c.instances[id]
		if labels.BelongsTo(inst.Labels, cluster) {
			matching = append(matching, cloneInstance(inst.Instance))
		}
	}

	items, next, err := page(matching, pageToken, c.PageSize)
	if err != nil {
		return provider.InstancePage{}, err
	}
	return provider.InstancePage{Instances: items, Next: next}, nil
}

// CreateInstance implements provider.InstanceAPI.
func (c *Cloud) CreateInstance(_ context.Context, req provider.CreateInstanceRequest) (provider.Instance, provider.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["CreateInstance"]++

	if c.CreateErr != nil {
		return provider.Instance{}, provider.Action{}, c.CreateErr
	}
	inst := &instance{Instance: provider.Instance{
		ID:     c.id(),
		Name:   req.Name,
		Role:   roleOf(req.Labels, req.Name),
		Status: StatusNew,
		Labels: maps.Clone(req.Labels),
	}}
	c.boot(inst)
	c.instances[inst.ID] = inst

	return cloneInstance(inst.Instance), c.newAction("create_instance", false), nil
}

// PowerOn implements provider.InstanceAPI.
func (c *Cloud) PowerOn(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["PowerOn"]++

	inst, err := c.get(id)
	if err != nil {
		return err
	}
	if inst.Status == StatusOff {
		inst.Status = StatusNew
		c.boot(inst)
	}
	return nil
}

// Shutdown implements provider.InstanceAPI.
func (c *Cloud) Shutdown(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["Shutdown"]++

	inst, err := c.get(id)
	if err != nil {
		return err
	}
	if inst.Status != StatusOff {
		inst.target = StatusOff
		inst.ticksLeft = c.StopTicks
	}
	return nil
}

// Destroy implements provider.InstanceAPI.
func (c *Cloud) Destroy(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["Destroy"]++

	if err := c.DestroyErr[id]; err != nil {
		return err
	}
	inst, err := c.get(id)
	if err != nil {
		return err
	}
	inst.destroying = true
	inst.ticksLeft = c.DestroyTicks
	return nil
}

// Rename implements provider.InstanceAPI.
func (c *Cloud) Rename(_ context.Context, id, name string, role provider.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["Rename"]++

	inst, err := c.get(id)
	if err != nil {
		return err
	}
	inst.Name = name
	inst.Role = role
	inst.Labels[labels.KeyRole] = string(role)
	return nil
}

// GetInstance implements provider.InstanceAPI.
func (c *Cloud) GetInstance(_ context.Context, id string) (provider.Instance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["GetInstance"]++

	inst, err := c.get(id)
	if err != nil {
		return provider.Instance{}, err
	}
	return cloneInstance(inst.Instance), nil
}

// GetAction implements provider.InstanceAPI.
func (c *Cloud) GetAction(_ context.Context, id string) (provider.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["GetAction"]++

	a, ok := c.actions[id]
	if !ok {
		return provider.Action{}, notFound("action", id)
	}
	if a.Status == provider.ActionInProgress {
		if a.pollsLeft > 0 {
			a.pollsLeft--
		} else if a.fail {
			a.Status = provider.ActionErrored
			a.Error = "simulated failure"
		} else {
			a.Status = provider.ActionCompleted
		}
	}
	return a.Action, nil
}

// CreateVolume implements provider.VolumeAPI.
func (c *Cloud) CreateVolume(_ context.Context, req provider.CreateVolumeRequest) (provider.Volume, provider.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["CreateVolume"]++

	v := provider.Volume{ID: c.id(), Name: req.Name, Labels: maps.Clone(req.Labels)}
	c.volumes[v.ID] = v
	return v, c.newAction("create_volume", false), nil
}

// AttachVolume implements provider.VolumeAPI.
func (c *Cloud) AttachVolume(_ context.Context, volumeID, instanceID string) (provider.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["AttachVolume"]++

	v, ok := c.volumes[volumeID]
	if !ok {
		return provider.Action{}, notFound("volume", volumeID)
	}
	if _, err := c.get(instanceID); err != nil {
		return provider.Action{}, err
	}
	if !c.FailAttach {
		v.InstanceID = instanceID
		c.volumes[volumeID] = v
	}
	return c.newAction("attach_volume", c.FailAttach), nil
}

// DeleteVolume implements provider.VolumeAPI.
func (c *Cloud) DeleteVolume(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["DeleteVolume"]++

	if err := c.DeleteVolumeErr[id]; err != nil {
		return err
	}
	if _, ok := c.volumes[id]; !ok {
		return notFound("volume", id)
	}
	delete(c.volumes, id)
	return nil
}

// ListVolumes implements provider.VolumeAPI.
func (c *Cloud) ListVolumes(_ context.Context, cluster, pageToken string) (provider.VolumePage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls["ListVolumes"]++

	if c.ListErr != nil {
		return provider.VolumePage{}, c.ListErr
	}
	var matching []provider.Volume
	for _, id := range slices.Sorted(maps.Keys(c.volumes)) {
		if v := c.volumes[id]; labels.BelongsTo(v.Labels, cluster) {
			matching = append(matching, v)
		}
	}

	items, next, err := page(matching, pageToken, c.PageSize)
	if err != nil {
		return provider.VolumePage{}, err
	}
	return provider.VolumePage{Volumes: items, Next: next}, nil
}

// tick advances every pending transition by one step. Caller holds mu.
func (c *Cloud) tick() {
	for id, inst := range c.instances {
		if inst.destroying {
			if inst.ticksLeft > 0 {
				inst.ticksLeft--
				continue
			}
			delete(c.instances, id)
			c.detach(id)
			continue
		}
		if inst.target == "" {
			continue
		}
		if inst.ticksLeft > 0 {
			inst.ticksLeft--
			continue
		}
		inst.Status = inst.target
		inst.target = ""
		if inst.Status == StatusActive {
			c.assignAddresses(inst)
		}
	}
}

func (c *Cloud) boot(inst *instance) {
	if c.NeverActivate {
		inst.target = ""
		return
	}
	inst.target = StatusActive
	inst.ticksLeft = c.BootTicks
}

func (c *Cloud) detach(instanceID string) {
	for id, v := range c.volumes {
		if v.InstanceID == instanceID {
			v.InstanceID = ""
			c.volumes[id] = v
		}
	}
}

func (c *Cloud) get(id string) (*instance, error) {
	inst, ok := c.instances[id]
	if !ok {
		return nil, notFound("instance", id)
	}
	return inst, nil
}

func (c *Cloud) newAction(command string, fail bool) provider.Action {
	a := &action{
		Action: provider.Action{
			ID:      c.id(),
			Command: command,
			Status:  provider.ActionInProgress,
		},
		pollsLeft: c.ActionPolls,
		fail:      fail,
	}
	c.actions[a.ID] = a
	return a.Action
}

func page[T any](items []T, token string, size int) ([]T, string, error) {
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(items) {
			return nil, "", fmt.Errorf("invalid page token %q", token)
		}
		start = n
	}
	if size <= 0 {
		size = len(items)
	}
	end := min(start+size, len(items))
	next := ""
	if end < len(items) {
		next = strconv.Itoa(end)
	}
	return items[start:end], next, nil
}

func roleOf(l map[string]string, name string) provider.Role {
	if r := l[labels.KeyRole]; r != "" {
		return provider.Role(r)
	}
	return provider.Role(naming.RoleFromName(name))
}

func (c *Cloud) assignAddresses(inst *instance) {
	n, _ := strconv.Atoi(inst.ID)
	inst.InternalIP = fmt.Sprintf("10.0.0.%d", n%250+2)
	if !c.NoExternalIP {
		inst.ExternalIP = fmt.Sprintf("203.0.113.%d", n%250+2)
	}
}

func cloneInstance(i provider.Instance) provider.Instance {
	i.Labels = maps.Clone(i.Labels)
	return i
}

func notFound(kind, id string) error {
	return &provider.APIError{
		Provider:   "fake",
		Operation:  "get " + kind,
		StatusCode: 404,
		Reason:     "not_found",
		Message:    fmt.Sprintf("%s %s not found", kind, id),
	}
}
