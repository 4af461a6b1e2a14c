// Package openstack implements provider.Client on top of the OpenStack
// compute (Nova) and block storage (Cinder v3) APIs using gophercloud.
//
// The region is fixed when the service clients are built: it selects the
// catalog endpoints, so the Region of create requests is not sent.
// Instance type and image are passed through as flavor and image refs.
//
// Nova has no label selector, so listings filter by name prefix on the
// server side and by metadata on the client side. Page tokens are Nova
// and Cinder markers (the id of the last item on the previous page).
//
// OpenStack has no action objects. Create and attach calls return a
// synthetic action whose id encodes the resource to watch:
//
//	server:<id>  completes once the server leaves BUILD
//	volume:<id>  completes once the volume is available
//	attach:<id>  completes once the volume is in-use
//
// Cinder volumes are created unformatted; CreateVolumeRequest.Filesystem
// is ignored.
package openstack
