// Package compute converges a cluster on a desired number of running
// instances.
//
// The Provisioner is a state machine that re-observes the provider before
// every decision:
//
//	drain-pending -> reconcile-count -> resume-stopped -> create -> wait-active -> done
//
// Because no phase trusts local memory, Run can be re-invoked after any
// failure and converges on the same instances without double-provisioning.
// Creation is strictly sequential and the first instance created in a
// headless cluster becomes its head.
package compute
