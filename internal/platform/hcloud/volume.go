package hcloud

import (
	"context"
	"maps"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/util/labels"
)

// CreateVolume implements provider.VolumeAPI. The volume is formatted but
// not attached.
func (c *RealClient) CreateVolume(ctx context.Context, req provider.CreateVolumeRequest) (provider.Volume, provider.Action, error) {
	locObj, err := c.resolveLocation(ctx, req.Region)
	if err != nil {
		return provider.Volume{}, provider.Action{}, err
	}

	opts := hcloud.VolumeCreateOpts{
		Name:     req.Name,
		Size:     req.SizeGB,
		Location: locObj,
		Labels:   req.Labels,
	}
	if req.Filesystem != "" {
		opts.Format = hcloud.Ptr(req.Filesystem)
	}

	result, resp, err := c.client.Volume.Create(ctx, opts)
	if err != nil {
		return provider.Volume{}, provider.Action{}, apiError("create volume", resp, err)
	}
	return toVolume(result.Volume), combineActions(append([]*hcloud.Action{result.Action}, result.NextActions...)...), nil
}

// AttachVolume implements provider.VolumeAPI.
func (c *RealClient) AttachVolume(ctx context.Context, volumeID, instanceID string) (provider.Action, error) {
	vid, err := parseID("volume", volumeID)
	if err != nil {
		return provider.Action{}, err
	}
	server, err := serverRef(instanceID)
	if err != nil {
		return provider.Action{}, err
	}

	action, resp, err := c.client.Volume.Attach(ctx, &hcloud.Volume{ID: vid}, server)
	if err != nil {
		return provider.Action{}, apiError("attach volume", resp, err)
	}
	return toAction(action), nil
}

// DeleteVolume implements provider.VolumeAPI.
func (c *RealClient) DeleteVolume(ctx context.Context, id string) error {
	vid, err := parseID("volume", id)
	if err != nil {
		return err
	}
	resp, err := c.client.Volume.Delete(ctx, &hcloud.Volume{ID: vid})
	if IsNotFound(err) {
		return nil
	}
	return apiError("delete volume", resp, err)
}

// ListVolumes implements provider.VolumeAPI.
func (c *RealClient) ListVolumes(ctx context.Context, cluster, pageToken string) (provider.VolumePage, error) {
	page, err := parsePage(pageToken)
	if err != nil {
		return provider.VolumePage{}, err
	}

	volumes, resp, err := c.client.Volume.List(ctx, hcloud.VolumeListOpts{
		ListOpts: hcloud.ListOpts{
			Page:          page,
			PerPage:       c.perPage,
			LabelSelector: labels.SelectorForCluster(cluster),
		},
	})
	if err != nil {
		return provider.VolumePage{}, apiError("list volumes", resp, err)
	}

	out := provider.VolumePage{Volumes: make([]provider.Volume, 0, len(volumes))}
	for _, v := range volumes {
		out.Volumes = append(out.Volumes, toVolume(v))
	}
	out.Next = nextPage(resp)
	return out, nil
}

func toVolume(v *hcloud.Volume) provider.Volume {
	if v == nil {
		return provider.Volume{}
	}
	out := provider.Volume{
		ID:     formatID(v.ID),
		Name:   v.Name,
		Labels: maps.Clone(v.Labels),
	}
	if v.Server != nil {
		out.InstanceID = formatID(v.Server.ID)
	}
	return out
}
