package provisioning

import (
	"time"

	"github.com/go-logr/logr"
)

// Phase names a state of the provisioning or teardown state machines.
type Phase string

// Provisioning states.
const (
	PhaseDrainPending   Phase = "drain-pending"
	PhaseReconcileCount Phase = "reconcile-count"
	PhaseResumeStopped  Phase = "resume-stopped"
	PhaseCreate         Phase = "create"
	PhaseWaitActive     Phase = "wait-active"
	PhaseDone           Phase = "done"
)

// Teardown states.
const (
	PhaseStop           Phase = "stop"
	PhaseTerminate      Phase = "terminate"
	PhaseCleanupVolumes Phase = "cleanup-volumes"
)

// LogPhaseStart logs a phase start event.
func LogPhaseStart(log logr.Logger, cluster string, phase Phase) time.Time {
	log.V(1).Info("phase started", "cluster", cluster, "phase", string(phase))
	return time.Now()
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(log logr.Logger, cluster string, phase Phase, start time.Time) {
	log.V(1).Info("phase completed", "cluster", cluster, "phase", string(phase),
		"duration", time.Since(start).Round(time.Millisecond).String())
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(log logr.Logger, cluster string, phase Phase, err error) {
	log.Error(err, "phase failed", "cluster", cluster, "phase", string(phase))
}
