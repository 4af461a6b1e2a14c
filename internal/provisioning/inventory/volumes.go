package inventory

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/nodefleet/internal/provider"
)

// Volumes is the storage directory of one provider.
type Volumes struct {
	api provider.VolumeAPI
	log logr.Logger
}

// NewVolumes creates a storage directory over api.
func NewVolumes(api provider.VolumeAPI, opts ...Option) *Volumes {
	o := buildOptions(opts)
	return &Volumes{api: api, log: o.log}
}

// List returns the volumes of cluster keyed by name.
func (d *Volumes) List(ctx context.Context, cluster string) (map[string]provider.Volume, error) {
	out := make(map[string]provider.Volume)
	seen := make(map[string]bool)
	token := ""

	for {
		page, err := d.api.ListVolumes(ctx, cluster, token)
		if err != nil {
			return nil, fmt.Errorf("failed to list volumes of cluster %s: %w", cluster, err)
		}

		for _, v := range page.Volumes {
			if prev, ok := out[v.Name]; ok && prev.ID != v.ID {
				return nil, fmt.Errorf("cluster %s: volumes %s and %s share the name %q", cluster, prev.ID, v.ID, v.Name)
			}
			out[v.Name] = v
		}

		if page.Next == "" {
			break
		}
		if seen[page.Next] {
			return nil, fmt.Errorf("failed to list volumes of cluster %s: page token %q repeated", cluster, page.Next)
		}
		seen[page.Next] = true
		token = page.Next
	}

	d.log.V(2).Info("listed volumes", "cluster", cluster, "count", len(out))
	return out, nil
}

// OwnedBy returns the volumes whose owner is one of ids.
func OwnedBy(volumes map[string]provider.Volume, ids map[string]bool) map[string]provider.Volume {
	out := make(map[string]provider.Volume)
	for name, v := range volumes {
		if ids[v.OwnerID()] {
			out[name] = v
		}
	}
	return out
}
