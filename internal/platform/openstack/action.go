package openstack

import (
	"context"
	"fmt"
	"strings"

	"github.com/gophercloud/gophercloud/openstack/blockstorage/v3/volumes"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/servers"

	"github.com/imamik/nodefleet/internal/provider"
)

const (
	kindServer = "server"
	kindVolume = "volume"
	kindAttach = "attach"
)

func pendingAction(kind, id, command string) provider.Action {
	return provider.Action{
		ID:      kind + ":" + id,
		Command: command,
		Status:  provider.ActionInProgress,
	}
}

// GetAction implements provider.InstanceAPI by re-reading the resource the
// synthetic action refers to.
func (c *Client) GetAction(ctx context.Context, id string) (provider.Action, error) {
	if err := live(ctx); err != nil {
		return provider.Action{}, err
	}

	kind, ref, ok := strings.Cut(id, ":")
	if !ok || ref == "" {
		return provider.Action{}, fmt.Errorf("invalid action id %q", id)
	}

	action := provider.Action{ID: id, Status: provider.ActionInProgress}
	switch kind {
	case kindServer:
		action.Command = "create_server"
		server, err := servers.Get(c.compute, ref).Extract()
		if err != nil {
			return provider.Action{}, apiError("get server", err)
		}
		switch server.Status {
		case StatusBuild:
		case StatusError:
			action.Status = provider.ActionErrored
			action.Error = server.Fault.Message
		default:
			action.Status = provider.ActionCompleted
		}

	case kindVolume, kindAttach:
		action.Command = "create_volume"
		done := VolumeAvailable
		if kind == kindAttach {
			action.Command = "attach_volume"
			done = VolumeInUse
		}
		vol, err := volumes.Get(c.volumes, ref).Extract()
		if err != nil {
			return provider.Action{}, apiError("get volume", err)
		}
		switch {
		case vol.Status == done:
			action.Status = provider.ActionCompleted
		case strings.HasPrefix(vol.Status, "error"):
			action.Status = provider.ActionErrored
			action.Error = "volume " + vol.Status
		}

	default:
		return provider.Action{}, fmt.Errorf("invalid action id %q", id)
	}
	return action, nil
}
