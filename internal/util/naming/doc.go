// Package naming provides consistent naming functions for cluster instances.
//
// Instance names follow the pattern {cluster}-{4 hex}-{role}. The random
// suffix keeps names unique across retries and promotions. The role suffix
// is for humans reading the provider console; code reads the role label.
package naming
