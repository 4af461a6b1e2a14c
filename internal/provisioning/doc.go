// Package provisioning provides shared types and the error taxonomy for
// cluster instance reconciliation.
//
// # Subpackages
//
//   - inventory/ — paginated instance and volume directories, head lookup
//   - compute/ — the Provisioner state machine (drain, resume, create, wait)
//   - destroy/ — the Decommissioner (stop, terminate, volume cleanup)
//
// # Core Types
//
// Record is the result of a successful provisioning run. ClusterView is a
// read-only snapshot recomputed on every observation. ClusterInfo is the
// caller-facing description of a running cluster. Phase names the states
// of the provisioning state machine for logs and metrics.
package provisioning
