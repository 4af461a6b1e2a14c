package naming

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/imamik/nodefleet/internal/util/labels"
)

const suffixLength = 4

// Instance returns a fresh instance name for the given cluster and role.
func Instance(cluster, role string) string {
	return InstanceWithSuffix(cluster, RandomSuffix(), role)
}

// InstanceWithSuffix builds an instance name from an explicit suffix.
func InstanceWithSuffix(cluster, suffix, role string) string {
	return fmt.Sprintf("%s-%s-%s", cluster, suffix, role)
}

// Volume returns the name of the volume attached to an instance.
func Volume(instanceName string) string {
	return instanceName
}

// RandomSuffix returns suffixLength lowercase hex characters.
func RandomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
}

// RoleFromName infers the role from the name suffix. It is only used for
// instances that carry no role label.
func RoleFromName(name string) string {
	switch {
	case strings.HasSuffix(name, "-"+labels.RoleHead):
		return labels.RoleHead
	case strings.HasSuffix(name, "-"+labels.RoleWorker):
		return labels.RoleWorker
	default:
		return ""
	}
}

// ClusterPrefix is the name prefix shared by every instance of a cluster.
func ClusterPrefix(cluster string) string {
	return cluster + "-"
}
