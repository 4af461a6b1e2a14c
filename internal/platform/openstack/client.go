package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"

	"github.com/imamik/nodefleet/internal/provider"
)

// ProviderName identifies this backend.
const ProviderName = "openstack"

const defaultPerPage = 50

// Client implements provider.Client for OpenStack.
type Client struct {
	compute *gophercloud.ServiceClient
	volumes *gophercloud.ServiceClient
	perPage int
}

var _ provider.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithPerPage sets the page size of listings.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// NewClient wraps existing compute and block storage service clients.
func NewClient(compute, volumes *gophercloud.ServiceClient, opts ...Option) *Client {
	c := &Client{
		compute: compute,
		volumes: volumes,
		perPage: defaultPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv authenticates with the OS_* environment variables and builds
// service clients for region.
func NewFromEnv(region string, opts ...Option) (*Client, error) {
	authOpts, err := openstack.AuthOptionsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth options from env: %w", err)
	}

	pc, err := openstack.AuthenticatedClient(authOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	eo := gophercloud.EndpointOpts{Region: region}
	compute, err := openstack.NewComputeV2(pc, eo)
	if err != nil {
		return nil, fmt.Errorf("failed to get compute client: %w", err)
	}
	volumes, err := openstack.NewBlockStorageV3(pc, eo)
	if err != nil {
		return nil, fmt.Errorf("failed to get block storage client: %w", err)
	}

	return NewClient(compute, volumes, opts...), nil
}

// Name implements provider.Client.
func (c *Client) Name() string {
	return ProviderName
}

// Lifecycle implements provider.Client.
func (c *Client) Lifecycle() provider.Lifecycle {
	return Lifecycle
}

// gophercloud v1 calls take no context; cancellation is honoured between calls.
func live(ctx context.Context) error {
	return ctx.Err()
}
