package compute

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/nodefleet/internal/config"
	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/util/labels"
	"github.com/imamik/nodefleet/internal/util/naming"
	"github.com/imamik/nodefleet/internal/util/poll"
)

// createOne creates an instance with its data volume and waits for every
// step. A spec without disk size gets no volume.
func (p *Provisioner) createOne(ctx context.Context, log logr.Logger, req Request, role provider.Role) (provider.Instance, error) {
	name := naming.Instance(req.Cluster, string(role))

	inst, action, err := p.client.CreateInstance(ctx, provider.CreateInstanceRequest{
		Name:   name,
		Region: req.Region,
		Spec:   req.Spec,
		Labels: labels.NewLabelBuilder(req.Cluster).
			WithRole(string(role)).
			Merge(req.Spec.Labels).
			Build(),
	})
	if err != nil {
		return provider.Instance{}, fmt.Errorf("failed to create instance %s: %w", name, err)
	}
	if err := p.waitAction(ctx, action); err != nil {
		return provider.Instance{}, fmt.Errorf("failed to create instance %s: %w", name, err)
	}
	log.Info("created instance", "name", name, "id", inst.ID, "role", string(role))

	if req.Spec.DiskSizeGB <= 0 {
		return inst, nil
	}

	volName := naming.Volume(name)
	vol, action, err := p.client.CreateVolume(ctx, provider.CreateVolumeRequest{
		Name:       volName,
		Region:     req.Region,
		SizeGB:     req.Spec.DiskSizeGB,
		Filesystem: config.DefaultVolumeFilesystem,
		Labels: labels.NewLabelBuilder(req.Cluster).
			WithRole(string(role)).
			WithInstance(inst.ID).
			Merge(req.Spec.Labels).
			Build(),
	})
	if err != nil {
		return provider.Instance{}, fmt.Errorf("failed to create volume %s: %w", volName, err)
	}
	if err := p.waitAction(ctx, action); err != nil {
		return provider.Instance{}, fmt.Errorf("failed to create volume %s: %w", volName, err)
	}

	action, err = p.client.AttachVolume(ctx, vol.ID, inst.ID)
	if err != nil {
		return provider.Instance{}, fmt.Errorf("failed to attach volume %s to %s: %w", volName, name, err)
	}
	if err := p.waitAction(ctx, action); err != nil {
		return provider.Instance{}, fmt.Errorf("failed to attach volume %s to %s: %w", volName, name, err)
	}
	log.V(1).Info("attached volume", "volume", volName, "volumeId", vol.ID, "instance", name)

	return inst, nil
}

// waitAction blocks until action completes. An errored action fails with
// *provider.ActionError.
func (p *Provisioner) waitAction(ctx context.Context, action provider.Action) error {
	switch {
	case action.ID == "" || action.Status == provider.ActionCompleted:
		return nil
	case action.Status == provider.ActionErrored:
		return &provider.ActionError{Action: action}
	}

	return poll.Until(ctx, func(ctx context.Context) (bool, int, error) {
		cur, err := p.client.GetAction(ctx, action.ID)
		if err != nil {
			return false, 0, err
		}
		switch cur.Status {
		case provider.ActionCompleted:
			return true, 1, nil
		case provider.ActionErrored:
			return false, 0, &provider.ActionError{Action: cur}
		}
		return false, 0, nil
	},
		poll.WithPhase("action "+action.Command),
		poll.WithInterval(p.settings.ActionInterval),
		poll.WithMaxAttempts(p.settings.ActionAttempts),
		poll.WithTarget(1),
		poll.WithSleep(p.sleep),
	)
}
