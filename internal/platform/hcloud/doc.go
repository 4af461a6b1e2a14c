// Package hcloud implements provider.Client on the Hetzner Cloud API.
//
// # Architecture
//
//   - real_client.go: client construction and options
//   - lifecycle.go: server status groups and their projection
//   - server.go: instance API (list, create, power, rename, destroy)
//   - server_helpers.go: dependency resolution and schema conversion
//   - volume.go: volume API
//   - action.go: action status mapping
//   - errors.go: error classification and normalisation
//
// Instances and volumes are found by label selector, so the labels written at
// creation are the only state the reconciler keeps. Listings page through
// the API with the pagination metadata of every response.
//
// Every API failure carrying an hcloud error code is returned as a
// *provider.APIError with the HTTP status code, the error code as reason and
// the API message.
//
// The underlying *hcloud.Client is safe for concurrent use, and so is
// RealClient.
package hcloud
