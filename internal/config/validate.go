package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/imamik/nodefleet/internal/util/labels"
)

// clusterNamePattern keeps cluster names usable as label values and as the
// prefix of instance names.
var clusterNamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,38}[a-z0-9])?$`)

// ValidProviders lists the provider backends that can be configured.
var ValidProviders = map[string]bool{
	ProviderHCloud:    true,
	ProviderOpenStack: true,
	ProviderFake:      true,
}

// Validate checks the configuration and joins every problem it finds.
func (c *Config) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	} else if !clusterNamePattern.MatchString(c.Name) {
		errs = append(errs, fmt.Errorf("name %q must be lowercase alphanumeric with dashes, at most 40 characters", c.Name))
	}
	if !ValidProviders[c.Provider] {
		errs = append(errs, fmt.Errorf("provider %q is not supported", c.Provider))
	}
	if c.Region == "" {
		errs = append(errs, fmt.Errorf("region is required"))
	}
	if c.Count < 1 {
		errs = append(errs, fmt.Errorf("count must be at least 1, got %d", c.Count))
	}

	if err := c.validateNode(); err != nil {
		errs = append(errs, fmt.Errorf("node validation failed: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Config) validateNode() error {
	if c.Node.InstanceType == "" {
		return fmt.Errorf("instance_type is required")
	}
	if c.Node.Image == "" {
		return fmt.Errorf("image is required")
	}
	if c.Node.DiskSizeGB < 0 {
		return fmt.Errorf("disk_size_gb must not be negative")
	}
	for k := range c.Node.Labels {
		if labels.IsReserved(k) {
			return fmt.Errorf("label %q uses a reserved key", k)
		}
	}
	if c.Provider == ProviderOpenStack && len(c.Node.Networks) == 0 {
		return fmt.Errorf("networks are required for provider %s", ProviderOpenStack)
	}
	return nil
}
