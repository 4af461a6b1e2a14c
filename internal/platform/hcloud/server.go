package hcloud

import (
	"context"
	"fmt"
	"maps"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/util/labels"
)

// ListInstances implements provider.InstanceAPI. The page token is the
// next page number reported by the API.
func (c *RealClient) ListInstances(ctx context.Context, cluster, pageToken string) (provider.InstancePage, error) {
	page, err := parsePage(pageToken)
	if err != nil {
		return provider.InstancePage{}, err
	}

	servers, resp, err := c.client.Server.List(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{
			Page:          page,
			PerPage:       c.perPage,
			LabelSelector: labels.SelectorForCluster(cluster),
		},
	})
	if err != nil {
		return provider.InstancePage{}, apiError("list servers", resp, err)
	}

	out := provider.InstancePage{Instances: make([]provider.Instance, 0, len(servers))}
	for _, s := range servers {
		out.Instances = append(out.Instances, toInstance(s))
	}
	out.Next = nextPage(resp)
	return out, nil
}

// CreateInstance implements provider.InstanceAPI.
func (c *RealClient) CreateInstance(ctx context.Context, req provider.CreateInstanceRequest) (provider.Instance, provider.Action, error) {
	opts, err := c.buildServerCreateOpts(ctx, req)
	if err != nil {
		return provider.Instance{}, provider.Action{}, err
	}

	result, resp, err := c.client.Server.Create(ctx, opts)
	if err != nil {
		return provider.Instance{}, provider.Action{}, apiError("create server", resp, err)
	}
	return toInstance(result.Server), combineActions(append([]*hcloud.Action{result.Action}, result.NextActions...)...), nil
}

// PowerOn implements provider.InstanceAPI.
func (c *RealClient) PowerOn(ctx context.Context, id string) error {
	server, err := serverRef(id)
	if err != nil {
		return err
	}
	_, resp, err := c.client.Server.Poweron(ctx, server)
	return apiError("power on server", resp, err)
}

// Shutdown implements provider.InstanceAPI. It requests an ACPI shutdown.
func (c *RealClient) Shutdown(ctx context.Context, id string) error {
	server, err := serverRef(id)
	if err != nil {
		return err
	}
	_, resp, err := c.client.Server.Shutdown(ctx, server)
	return apiError("shutdown server", resp, err)
}

// Destroy implements provider.InstanceAPI.
func (c *RealClient) Destroy(ctx context.Context, id string) error {
	server, err := serverRef(id)
	if err != nil {
		return err
	}
	_, resp, err := c.client.Server.DeleteWithResult(ctx, server)
	if IsNotFound(err) {
		return nil
	}
	return apiError("delete server", resp, err)
}

// Rename implements provider.InstanceAPI. Labels are replaced as a whole by
// the API, so the current set is read first.
func (c *RealClient) Rename(ctx context.Context, id, name string, role provider.Role) error {
	server, err := c.getServer(ctx, id)
	if err != nil {
		return err
	}

	l := maps.Clone(server.Labels)
	if l == nil {
		l = make(map[string]string)
	}
	l[labels.KeyRole] = string(role)

	_, resp, err := c.client.Server.Update(ctx, server, hcloud.ServerUpdateOpts{
		Name:   name,
		Labels: l,
	})
	return apiError("update server", resp, err)
}

// GetInstance implements provider.InstanceAPI.
func (c *RealClient) GetInstance(ctx context.Context, id string) (provider.Instance, error) {
	server, err := c.getServer(ctx, id)
	if err != nil {
		return provider.Instance{}, err
	}
	return toInstance(server), nil
}

func (c *RealClient) getServer(ctx context.Context, id string) (*hcloud.Server, error) {
	n, err := parseID("server", id)
	if err != nil {
		return nil, err
	}
	server, resp, err := c.client.Server.GetByID(ctx, n)
	if err != nil {
		return nil, apiError("get server", resp, err)
	}
	if server == nil {
		return nil, notFound("get server", "server", id)
	}
	return server, nil
}

func serverRef(id string) (*hcloud.Server, error) {
	n, err := parseID("server", id)
	if err != nil {
		return nil, err
	}
	return &hcloud.Server{ID: n}, nil
}

func parsePage(token string) (int, error) {
	if token == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(token)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page token %q", token)
	}
	return page, nil
}

func nextPage(resp *hcloud.Response) string {
	if resp == nil || resp.Meta.Pagination == nil || resp.Meta.Pagination.NextPage == 0 {
		return ""
	}
	return strconv.Itoa(resp.Meta.Pagination.NextPage)
}
