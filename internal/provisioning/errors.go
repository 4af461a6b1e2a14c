package provisioning

import (
	"errors"
	"fmt"

	"github.com/imamik/nodefleet/internal/util/poll"
)

var (
	// ErrOverProvisioned means the cluster already has more instances than
	// requested. It is a configuration conflict and is never retried.
	ErrOverProvisioned = errors.New("cluster over-provisioned")

	// ErrCapacityExhausted means created instances never became active.
	ErrCapacityExhausted = errors.New("capacity exhausted")

	// ErrMultipleHeads means more than one instance carries the head role.
	ErrMultipleHeads = errors.New("multiple head instances")

	// ErrNoHead means a running cluster has no head instance.
	ErrNoHead = errors.New("no head instance")
)

// OverProvisionedError reports an existing count above the desired count.
type OverProvisionedError struct {
	Cluster  string
	Existing int
	Desired  int
}

func (e *OverProvisionedError) Error() string {
	return fmt.Sprintf("cluster %s already has %d nodes, but %d are required", e.Cluster, e.Existing, e.Desired)
}

func (e *OverProvisionedError) Is(target error) bool {
	return target == ErrOverProvisioned
}

// CapacityExhaustedError wraps the timeout of the final wait for active
// instances. It matches both ErrCapacityExhausted and
// poll.ErrConvergenceTimeout.
type CapacityExhaustedError struct {
	Cluster string
	Region  string
	Timeout *poll.TimeoutError
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("cluster %s: failed to create the instances due to capacity issue in region %s: %v",
		e.Cluster, e.Region, e.Timeout)
}

func (e *CapacityExhaustedError) Is(target error) bool {
	return target == ErrCapacityExhausted
}

func (e *CapacityExhaustedError) Unwrap() error {
	return e.Timeout
}
