// Package poll provides the bounded wait loop used while a cloud provider
// converges toward a requested state.
//
// The [Until] function re-evaluates a condition at a fixed interval up to a
// maximum number of attempts. It never retries mutating calls: the evaluation
// only observes state, and any evaluation error is returned immediately.
// Exhausting the attempts yields a [*TimeoutError] that matches
// [ErrConvergenceTimeout].
package poll
