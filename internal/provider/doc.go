// Package provider defines the contract between the reconciler and a cloud
// provider's instance and volume APIs.
//
// # Interfaces
//
//   - InstanceAPI: paginated listing, create, power on, shutdown, destroy,
//     rename and action lookup for compute instances
//   - VolumeAPI: paginated listing, create, attach and delete for block volumes
//   - Client: both APIs plus the provider's Lifecycle table
//
// Implementations live under internal/platform (hcloud, openstack) and in the
// fake subpackage. A Client must be safe for concurrent use when the caller
// reconciles several clusters at once; the reconciler itself never calls a
// Client from more than one goroutine per cluster.
//
// # Pagination
//
// List calls return one page and an opaque token for the next one. An empty
// token means the listing is exhausted. Callers must drain every page before
// acting on the result.
//
// # Actions
//
// Create and attach calls return an Action whose status moves from
// in-progress to completed or errored. An empty Action ID means the call
// completed synchronously.
package provider
