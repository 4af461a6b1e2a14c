package hcloud

import (
	"context"
	"fmt"
	"maps"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/util/labels"
	"github.com/imamik/nodefleet/internal/util/naming"
)

// buildServerCreateOpts resolves all dependencies and builds server creation options.
func (c *RealClient) buildServerCreateOpts(ctx context.Context, req provider.CreateInstanceRequest) (hcloud.ServerCreateOpts, error) {
	// Resolve server type
	serverTypeObj, resp, err := c.client.ServerType.Get(ctx, req.Spec.InstanceType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, apiError("get server type", resp, err)
	}
	if serverTypeObj == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", req.Spec.InstanceType)
	}

	imageObj, err := c.resolveImage(ctx, req.Spec.Image, serverTypeObj)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	sshKeyObjs, err := c.resolveSSHKeys(ctx, req.Spec.SSHKeys)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	locObj, err := c.resolveLocation(ctx, req.Region)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	networks, err := c.resolveNetworks(ctx, req.Spec.Networks)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		Name:       req.Name,
		ServerType: serverTypeObj,
		Image:      imageObj,
		SSHKeys:    sshKeyObjs,
		Location:   locObj,
		Networks:   networks,
		Labels:     req.Labels,
	}, nil
}

// resolveImage resolves an image name for the server type's architecture.
func (c *RealClient) resolveImage(ctx context.Context, imageType string, serverTypeObj *hcloud.ServerType) (*hcloud.Image, error) {
	imageObj, resp, err := c.client.Image.GetForArchitecture(ctx, imageType, serverTypeObj.Architecture)
	if err != nil {
		return nil, apiError("get image", resp, err)
	}
	if imageObj == nil {
		return nil, fmt.Errorf("image not found: %s (%s)", imageType, serverTypeObj.Architecture)
	}
	return imageObj, nil
}

// resolveSSHKeys resolves SSH key names/IDs to SSH key objects.
func (c *RealClient) resolveSSHKeys(ctx context.Context, sshKeys []string) ([]*hcloud.SSHKey, error) {
	var sshKeyObjs []*hcloud.SSHKey
	for _, key := range sshKeys {
		keyObj, resp, err := c.client.SSHKey.Get(ctx, key)
		if err != nil {
			return nil, apiError("get ssh key "+key, resp, err)
		}
		if keyObj == nil {
			return nil, fmt.Errorf("ssh key not found: %s", key)
		}
		sshKeyObjs = append(sshKeyObjs, keyObj)
	}
	return sshKeyObjs, nil
}

// resolveLocation resolves a location name to a location object.
func (c *RealClient) resolveLocation(ctx context.Context, location string) (*hcloud.Location, error) {
	if location == "" {
		return nil, nil
	}
	locObj, resp, err := c.client.Location.Get(ctx, location)
	if err != nil {
		return nil, apiError("get location "+location, resp, err)
	}
	if locObj == nil {
		return nil, fmt.Errorf("location not found: %s", location)
	}
	return locObj, nil
}

// resolveNetworks resolves private network names/IDs.
func (c *RealClient) resolveNetworks(ctx context.Context, names []string) ([]*hcloud.Network, error) {
	var networks []*hcloud.Network
	for _, name := range names {
		network, resp, err := c.client.Network.Get(ctx, name)
		if err != nil {
			return nil, apiError("get network "+name, resp, err)
		}
		if network == nil {
			return nil, fmt.Errorf("network not found: %s", name)
		}
		networks = append(networks, network)
	}
	return networks, nil
}

// ServerIPv4 returns the public IPv4 address of a server, or "".
func ServerIPv4(s *hcloud.Server) string {
	if s == nil || s.PublicNet.IPv4.IP == nil || s.PublicNet.IPv4.IP.IsUnspecified() {
		return ""
	}
	return s.PublicNet.IPv4.IP.String()
}

// ServerPrivateIPv4 returns the first private network address of a server.
// Servers without a private network report their public address.
func ServerPrivateIPv4(s *hcloud.Server) string {
	if s == nil {
		return ""
	}
	for _, pn := range s.PrivateNet {
		if pn.IP != nil {
			return pn.IP.String()
		}
	}
	return ServerIPv4(s)
}

// toInstance converts a server. Addresses are only reported once it runs.
func toInstance(s *hcloud.Server) provider.Instance {
	if s == nil {
		return provider.Instance{}
	}
	inst := provider.Instance{
		ID:     formatID(s.ID),
		Name:   s.Name,
		Status: string(s.Status),
		Labels: maps.Clone(s.Labels),
		Role:   provider.Role(s.Labels[labels.KeyRole]),
	}
	if inst.Role == "" {
		inst.Role = provider.Role(naming.RoleFromName(s.Name))
	}
	if s.Status == hcloud.ServerStatusRunning {
		inst.ExternalIP = ServerIPv4(s)
		inst.InternalIP = ServerPrivateIPv4(s)
	}
	return inst
}
