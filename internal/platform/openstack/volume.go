package openstack

import (
	"context"
	"maps"

	"github.com/gophercloud/gophercloud/openstack/blockstorage/v3/volumes"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/volumeattach"
	"github.com/gophercloud/gophercloud/pagination"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/util/labels"
)

// Cinder volume states the synthetic actions watch.
const (
	VolumeAvailable = "available"
	VolumeInUse     = "in-use"
)

// CreateVolume implements provider.VolumeAPI.
func (c *Client) CreateVolume(ctx context.Context, req provider.CreateVolumeRequest) (provider.Volume, provider.Action, error) {
	if err := live(ctx); err != nil {
		return provider.Volume{}, provider.Action{}, err
	}

	vol, err := volumes.Create(c.volumes, volumes.CreateOpts{
		Name:     req.Name,
		Size:     req.SizeGB,
		Metadata: req.Labels,
	}).Extract()
	if err != nil {
		return provider.Volume{}, provider.Action{}, apiError("create volume", err)
	}
	return toVolume(vol), pendingAction(kindVolume, vol.ID, "create_volume"), nil
}

// AttachVolume implements provider.VolumeAPI.
func (c *Client) AttachVolume(ctx context.Context, volumeID, instanceID string) (provider.Action, error) {
	if err := live(ctx); err != nil {
		return provider.Action{}, err
	}

	_, err := volumeattach.Create(c.compute, instanceID, volumeattach.CreateOpts{
		VolumeID: volumeID,
	}).Extract()
	if err != nil {
		return provider.Action{}, apiError("attach volume", err)
	}
	return pendingAction(kindAttach, volumeID, "attach_volume"), nil
}

// DeleteVolume implements provider.VolumeAPI.
func (c *Client) DeleteVolume(ctx context.Context, id string) error {
	if err := live(ctx); err != nil {
		return err
	}
	err := volumes.Delete(c.volumes, id, volumes.DeleteOpts{}).ExtractErr()
	if IsNotFound(err) {
		return nil
	}
	return apiError("delete volume", err)
}

// ListVolumes implements provider.VolumeAPI. Cinder filters on metadata
// server side.
func (c *Client) ListVolumes(ctx context.Context, cluster, pageToken string) (provider.VolumePage, error) {
	if err := live(ctx); err != nil {
		return provider.VolumePage{}, err
	}

	opts := volumes.ListOpts{
		Metadata: map[string]string{
			labels.KeyCluster:   cluster,
			labels.KeyManagedBy: labels.ManagedByNodefleet,
		},
		Limit:  c.perPage,
		Marker: pageToken,
	}

	var out provider.VolumePage
	err := volumes.List(c.volumes, opts).EachPage(func(page pagination.Page) (bool, error) {
		list, err := volumes.ExtractVolumes(page)
		if err != nil {
			return false, err
		}
		for i := range list {
			out.Volumes = append(out.Volumes, toVolume(&list[i]))
		}
		if next, err := page.(volumes.VolumePage).NextPageURL(); err == nil && next != "" && len(list) > 0 {
			out.Next = list[len(list)-1].ID
		}
		return false, nil
	})
	if err != nil {
		return provider.VolumePage{}, apiError("list volumes", err)
	}
	return out, nil
}

func toVolume(v *volumes.Volume) provider.Volume {
	out := provider.Volume{
		ID:     v.ID,
		Name:   v.Name,
		Labels: maps.Clone(v.Metadata),
	}
	if len(v.Attachments) > 0 {
		out.InstanceID = v.Attachments[0].ServerID
	}
	return out
}
