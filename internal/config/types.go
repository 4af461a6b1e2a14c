package config

import (
	"github.com/imamik/nodefleet/internal/provider"
)

// Provider names accepted in the cluster file.
const (
	ProviderHCloud    = "hcloud"
	ProviderOpenStack = "openstack"
	ProviderFake      = "fake"
)

// DefaultVolumeFilesystem is the filesystem every data volume is formatted with.
const DefaultVolumeFilesystem = "ext4"

// Config describes one cluster.
type Config struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	Region   string `mapstructure:"region" yaml:"region"`
	Count    int    `mapstructure:"count" yaml:"count"`

	Node NodeConfig `mapstructure:"node" yaml:"node"`
}

// NodeConfig is the shape shared by every instance of the cluster.
type NodeConfig struct {
	InstanceType string            `mapstructure:"instance_type" yaml:"instance_type"`
	Image        string            `mapstructure:"image" yaml:"image"`
	DiskSizeGB   int               `mapstructure:"disk_size_gb" yaml:"disk_size_gb"`
	SSHKeys      []string          `mapstructure:"ssh_keys" yaml:"ssh_keys"`
	Labels       map[string]string `mapstructure:"labels" yaml:"labels"`

	// Networks are OpenStack network UUIDs. Ignored by other providers.
	Networks []string `mapstructure:"networks" yaml:"networks"`
}

// NodeSpec converts the node section into the provider-facing spec.
func (c *Config) NodeSpec() provider.NodeSpec {
	return provider.NodeSpec{
		InstanceType: c.Node.InstanceType,
		Image:        c.Node.Image,
		DiskSizeGB:   c.Node.DiskSizeGB,
		SSHKeys:      c.Node.SSHKeys,
		Networks:     c.Node.Networks,
		Labels:       c.Node.Labels,
	}
}
