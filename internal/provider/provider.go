package provider

import "context"

// InstanceAPI is the provider's compute instance API.
type InstanceAPI interface {
	// ListInstances returns one page of the instances labelled for cluster.
	// pageToken is empty for the first page.
	ListInstances(ctx context.Context, cluster, pageToken string) (InstancePage, error)
	// CreateInstance requests a new instance and returns the creation action.
	CreateInstance(ctx context.Context, req CreateInstanceRequest) (Instance, Action, error)
	PowerOn(ctx context.Context, id string) error
	Shutdown(ctx context.Context, id string) error
	Destroy(ctx context.Context, id string) error
	// Rename changes the display name and rewrites the role label.
	Rename(ctx context.Context, id, name string, role Role) error
	GetInstance(ctx context.Context, id string) (Instance, error)
	GetAction(ctx context.Context, id string) (Action, error)
}

// VolumeAPI is the provider's block storage API.
type VolumeAPI interface {
	CreateVolume(ctx context.Context, req CreateVolumeRequest) (Volume, Action, error)
	AttachVolume(ctx context.Context, volumeID, instanceID string) (Action, error)
	DeleteVolume(ctx context.Context, id string) error
	// ListVolumes returns one page of the volumes labelled for cluster.
	ListVolumes(ctx context.Context, cluster, pageToken string) (VolumePage, error)
}

// Client is a complete provider backend.
type Client interface {
	InstanceAPI
	VolumeAPI

	// Name identifies the provider, e.g. "hcloud".
	Name() string
	Lifecycle() Lifecycle
}
