// Package labels provides consistent labeling for provider resources.
//
// Labels are the only persisted state of a nodefleet cluster: every instance
// and volume carries the cluster name, the managing tool and its role, and
// every volume additionally records the id of the instance it belongs to.
// All keys use the nodefleet.io domain prefix.
package labels
