// Package destroy stops and terminates the instances of a cluster and
// cleans up their volumes.
//
// Terminate runs two independently bounded phases. Instance destruction is
// strict: the first failed destroy call is returned. Volume cleanup is best
// effort: failures are logged and returned in a provisioning.CleanupReport
// but never fail the call. Volumes are correlated to instances by the
// instance id label written at creation, so a worker-only teardown leaves
// the head's volume alone.
package destroy
