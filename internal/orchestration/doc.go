// Package orchestration exposes the caller-facing operations of the
// reconciler.
//
// The Reconciler wires one provider client into the instance directory, the
// compute Provisioner and the destroy Decommissioner:
//
//	r := orchestration.NewReconciler(client, orchestration.WithLogger(log))
//	record, err := r.RunInstances(ctx, "nbg1", "train-01", 3, spec)
//
// Every operation re-observes the provider. The Reconciler holds no state
// between calls, so reconciling different clusters concurrently is safe as
// long as the provider client is.
package orchestration
