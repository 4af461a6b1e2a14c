package openstack

import (
	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/status"
)

// Nova server states.
const (
	StatusBuild            = "BUILD"
	StatusRebuild          = "REBUILD"
	StatusReboot           = "REBOOT"
	StatusHardReboot       = "HARD_REBOOT"
	StatusResize           = "RESIZE"
	StatusVerifyResize     = "VERIFY_RESIZE"
	StatusMigrating        = "MIGRATING"
	StatusPassword         = "PASSWORD"
	StatusActive           = "ACTIVE"
	StatusShutoff          = "SHUTOFF"
	StatusPaused           = "PAUSED"
	StatusSuspended        = "SUSPENDED"
	StatusShelved          = "SHELVED"
	StatusShelvedOffloaded = "SHELVED_OFFLOADED"
	StatusDeleted          = "DELETED"
	StatusSoftDeleted      = "SOFT_DELETED"
	StatusError            = "ERROR"
	StatusUnknown          = "UNKNOWN"
)

// Lifecycle groups the Nova server states. Only SHUTOFF servers can be
// started again, so paused, suspended and shelved servers are projected as
// stopped but never resumed.
var Lifecycle = provider.Lifecycle{
	Pending: []string{
		StatusBuild,
		StatusRebuild,
		StatusReboot,
		StatusHardReboot,
		StatusResize,
		StatusVerifyResize,
		StatusMigrating,
		StatusPassword,
	},
	Active:  []string{StatusActive},
	Stopped: []string{StatusShutoff},
	Projection: map[string]status.Status{
		StatusBuild:            status.Init,
		StatusRebuild:          status.Init,
		StatusReboot:           status.Init,
		StatusHardReboot:       status.Init,
		StatusResize:           status.Init,
		StatusVerifyResize:     status.Init,
		StatusMigrating:        status.Init,
		StatusPassword:         status.Init,
		StatusDeleted:          status.Init,
		StatusSoftDeleted:      status.Init,
		StatusActive:           status.Up,
		StatusShutoff:          status.Stopped,
		StatusPaused:           status.Stopped,
		StatusSuspended:        status.Stopped,
		StatusShelved:          status.Stopped,
		StatusShelvedOffloaded: status.Stopped,
		StatusError:            status.Unknown,
		StatusUnknown:          status.Unknown,
	},
}
