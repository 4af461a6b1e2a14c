package hcloud

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/nodefleet/internal/provider"
)

// ProviderName identifies this backend.
const ProviderName = "hcloud"

// defaultPerPage is the page size of every listing.
const defaultPerPage = 50

// RealClient implements provider.Client using the Hetzner Cloud API.
type RealClient struct {
	client  *hcloud.Client
	perPage int
}

var _ provider.Client = (*RealClient)(nil)

type clientConfig struct {
	perPage  int
	hcOpts   []hcloud.ClientOption
	registry prometheus.Registerer
}

// ClientOption configures a RealClient.
type ClientOption func(*clientConfig)

// WithPerPage sets the page size of listings.
func WithPerPage(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithEndpoint points the client at another API endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		c.hcOpts = append(c.hcOpts, hcloud.WithEndpoint(endpoint))
	}
}

// WithRegistry enables the hcloud client's own request metrics.
func WithRegistry(reg prometheus.Registerer) ClientOption {
	return func(c *clientConfig) {
		c.registry = reg
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	cfg := &clientConfig{perPage: defaultPerPage}
	for _, opt := range opts {
		opt(cfg)
	}

	hcOpts := append([]hcloud.ClientOption{
		hcloud.WithToken(token),
		hcloud.WithApplication("nodefleet", ""),
	}, cfg.hcOpts...)
	if cfg.registry != nil {
		hcOpts = append(hcOpts, hcloud.WithInstrumentation(cfg.registry))
	}

	return &RealClient{
		client:  hcloud.NewClient(hcOpts...),
		perPage: cfg.perPage,
	}
}

// Name implements provider.Client.
func (c *RealClient) Name() string {
	return ProviderName
}

// Lifecycle implements provider.Client.
func (c *RealClient) Lifecycle() provider.Lifecycle {
	return Lifecycle
}
