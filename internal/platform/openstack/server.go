package openstack

import (
	"context"
	"errors"
	"maps"
	"regexp"
	"slices"

	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/keypairs"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/startstop"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/servers"
	"github.com/gophercloud/gophercloud/pagination"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/util/labels"
	"github.com/imamik/nodefleet/internal/util/naming"
)

// ErrTooManyKeys is returned when a node spec names more than one key pair.
var ErrTooManyKeys = errors.New("openstack servers accept a single key pair")

// ListInstances implements provider.InstanceAPI.
func (c *Client) ListInstances(ctx context.Context, cluster, pageToken string) (provider.InstancePage, error) {
	if err := live(ctx); err != nil {
		return provider.InstancePage{}, err
	}

	opts := servers.ListOpts{
		Name:   "^" + regexp.QuoteMeta(naming.ClusterPrefix(cluster)),
		Limit:  c.perPage,
		Marker: pageToken,
	}

	var out provider.InstancePage
	err := servers.List(c.compute, opts).EachPage(func(page pagination.Page) (bool, error) {
		list, err := servers.ExtractServers(page)
		if err != nil {
			return false, err
		}
		for i := range list {
			if labels.BelongsTo(list[i].Metadata, cluster) {
				out.Instances = append(out.Instances, toInstance(&list[i]))
			}
		}
		if next, err := page.(servers.ServerPage).NextPageURL(); err == nil && next != "" && len(list) > 0 {
			out.Next = list[len(list)-1].ID
		}
		return false, nil
	})
	if err != nil {
		return provider.InstancePage{}, apiError("list servers", err)
	}
	return out, nil
}

// CreateInstance implements provider.InstanceAPI.
func (c *Client) CreateInstance(ctx context.Context, req provider.CreateInstanceRequest) (provider.Instance, provider.Action, error) {
	if err := live(ctx); err != nil {
		return provider.Instance{}, provider.Action{}, err
	}
	if len(req.Spec.SSHKeys) > 1 {
		return provider.Instance{}, provider.Action{}, ErrTooManyKeys
	}

	create := servers.CreateOpts{
		Name:      req.Name,
		ImageRef:  req.Spec.Image,
		FlavorRef: req.Spec.InstanceType,
		Metadata:  req.Labels,
	}
	if len(req.Spec.Networks) > 0 {
		networks := make([]servers.Network, 0, len(req.Spec.Networks))
		for _, n := range req.Spec.Networks {
			networks = append(networks, servers.Network{UUID: n})
		}
		create.Networks = networks
	}

	var opts servers.CreateOptsBuilder = create
	if len(req.Spec.SSHKeys) == 1 {
		opts = keypairs.CreateOptsExt{
			CreateOptsBuilder: opts,
			KeyName:           req.Spec.SSHKeys[0],
		}
	}

	server, err := servers.Create(c.compute, opts).Extract()
	if err != nil {
		return provider.Instance{}, provider.Action{}, apiError("create server", err)
	}

	// The create response only carries the id.
	inst := provider.Instance{
		ID:     server.ID,
		Name:   req.Name,
		Status: StatusBuild,
		Labels: maps.Clone(req.Labels),
		Role:   provider.Role(req.Labels[labels.KeyRole]),
	}
	return inst, pendingAction(kindServer, server.ID, "create_server"), nil
}

// PowerOn implements provider.InstanceAPI.
func (c *Client) PowerOn(ctx context.Context, id string) error {
	if err := live(ctx); err != nil {
		return err
	}
	return apiError("start server", startstop.Start(c.compute, id).ExtractErr())
}

// Shutdown implements provider.InstanceAPI.
func (c *Client) Shutdown(ctx context.Context, id string) error {
	if err := live(ctx); err != nil {
		return err
	}
	return apiError("stop server", startstop.Stop(c.compute, id).ExtractErr())
}

// Destroy implements provider.InstanceAPI.
func (c *Client) Destroy(ctx context.Context, id string) error {
	if err := live(ctx); err != nil {
		return err
	}
	err := servers.Delete(c.compute, id).ExtractErr()
	if IsNotFound(err) {
		return nil
	}
	return apiError("delete server", err)
}

// Rename implements provider.InstanceAPI. Nova merges metadata updates, so
// only the role key is sent. The role is written before the name: the role
// label decides the head, and a head left with its old name is renamed
// again on the next run.
func (c *Client) Rename(ctx context.Context, id, name string, role provider.Role) error {
	if err := live(ctx); err != nil {
		return err
	}
	_, err := servers.UpdateMetadata(c.compute, id, servers.MetadataOpts{
		labels.KeyRole: string(role),
	}).Extract()
	if err != nil {
		return apiError("update server metadata", err)
	}
	_, err = servers.Update(c.compute, id, servers.UpdateOpts{Name: name}).Extract()
	return apiError("update server", err)
}

// GetInstance implements provider.InstanceAPI.
func (c *Client) GetInstance(ctx context.Context, id string) (provider.Instance, error) {
	if err := live(ctx); err != nil {
		return provider.Instance{}, err
	}
	server, err := servers.Get(c.compute, id).Extract()
	if err != nil {
		return provider.Instance{}, apiError("get server", err)
	}
	return toInstance(server), nil
}

// toInstance converts a Nova server. Addresses are only reported once it is
// active.
func toInstance(s *servers.Server) provider.Instance {
	inst := provider.Instance{
		ID:     s.ID,
		Name:   s.Name,
		Status: s.Status,
		Labels: maps.Clone(s.Metadata),
		Role:   provider.Role(s.Metadata[labels.KeyRole]),
	}
	if inst.Role == "" {
		inst.Role = provider.Role(naming.RoleFromName(s.Name))
	}
	if s.Status == StatusActive {
		inst.InternalIP, inst.ExternalIP = serverAddresses(s)
	}
	return inst
}

// serverAddresses picks the first fixed and the first floating IPv4.
// Servers without a floating address report the fixed one as external.
func serverAddresses(s *servers.Server) (internal, external string) {
	for _, network := range sortedKeys(s.Addresses) {
		entries, ok := s.Addresses[network].([]any)
		if !ok {
			continue
		}
		for _, e := range entries {
			addr, ok := e.(map[string]any)
			if !ok {
				continue
			}
			ip, _ := addr["addr"].(string)
			version, _ := addr["version"].(float64)
			if ip == "" || version != 4 {
				continue
			}
			switch addr["OS-EXT-IPS:type"] {
			case "floating":
				if external == "" {
					external = ip
				}
			default:
				if internal == "" {
					internal = ip
				}
			}
		}
	}
	if external == "" {
		external = s.AccessIPv4
	}
	if external == "" {
		external = internal
	}
	return internal, external
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
