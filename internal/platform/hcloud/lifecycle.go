package hcloud

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/status"
)

// Lifecycle groups the Hetzner Cloud server states. Deleting servers are in
// no group: they no longer count toward capacity.
var Lifecycle = provider.Lifecycle{
	Pending: []string{
		string(hcloud.ServerStatusInitializing),
		string(hcloud.ServerStatusStarting),
		string(hcloud.ServerStatusStopping),
		string(hcloud.ServerStatusMigrating),
		string(hcloud.ServerStatusRebuilding),
	},
	Active:  []string{string(hcloud.ServerStatusRunning)},
	Stopped: []string{string(hcloud.ServerStatusOff)},
	Projection: map[string]status.Status{
		string(hcloud.ServerStatusInitializing): status.Init,
		string(hcloud.ServerStatusStarting):     status.Init,
		string(hcloud.ServerStatusStopping):     status.Init,
		string(hcloud.ServerStatusMigrating):    status.Init,
		string(hcloud.ServerStatusRebuilding):   status.Init,
		string(hcloud.ServerStatusDeleting):     status.Init,
		string(hcloud.ServerStatusRunning):      status.Up,
		string(hcloud.ServerStatusOff):          status.Stopped,
		string(hcloud.ServerStatusUnknown):      status.Unknown,
	},
}
