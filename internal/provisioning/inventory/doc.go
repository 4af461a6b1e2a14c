// Package inventory queries the provider for the instances and volumes of a
// cluster.
//
// Every listing drains all pages before returning and is keyed by resource
// name. Nothing is cached: each call observes the provider afresh, so the
// labels written at creation time are the only state the reconciler keeps.
package inventory
