package provisioning

import (
	"github.com/imamik/nodefleet/internal/provider"
)

// Record is the outcome of a successful provisioning run. All ids are
// provider instance ids.
type Record struct {
	Provider    string `json:"provider" yaml:"provider"`
	ClusterName string `json:"clusterName" yaml:"clusterName"`
	Region      string `json:"region" yaml:"region"`

	HeadInstanceID     string   `json:"headInstanceId" yaml:"headInstanceId"`
	ResumedInstanceIDs []string `json:"resumedInstanceIds" yaml:"resumedInstanceIds"`
	CreatedInstanceIDs []string `json:"createdInstanceIds" yaml:"createdInstanceIds"`
}

// ClusterView is a snapshot of a cluster's instances keyed by name.
type ClusterView struct {
	ClusterName string
	Region      string
	Instances   map[string]provider.Instance
	Head        *provider.Instance
}

// InstanceInfo describes one running instance to the caller.
type InstanceInfo struct {
	InstanceID string            `json:"instanceId" yaml:"instanceId"`
	InternalIP string            `json:"internalIp" yaml:"internalIp"`
	ExternalIP string            `json:"externalIp" yaml:"externalIp"`
	SSHPort    int               `json:"sshPort" yaml:"sshPort"`
	Tags       map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ClusterInfo describes every running instance of a cluster keyed by name.
type ClusterInfo struct {
	Provider       string                    `json:"provider" yaml:"provider"`
	HeadInstanceID string                    `json:"headInstanceId" yaml:"headInstanceId"`
	Instances      map[string][]InstanceInfo `json:"instances" yaml:"instances"`
}

// CleanupFailure is one resource the best-effort cleanup could not remove.
type CleanupFailure struct {
	Resource string `json:"resource" yaml:"resource"`
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Err      error  `json:"-" yaml:"-"`
	Message  string `json:"error" yaml:"error"`
}

// CleanupReport lists the failures of a best-effort cleanup pass. An empty
// report means every resource was removed.
type CleanupReport struct {
	Failures []CleanupFailure `json:"failures" yaml:"failures"`
}

// Add records a failure.
func (r *CleanupReport) Add(resource, id string, err error) {
	if err == nil {
		return
	}
	r.Failures = append(r.Failures, CleanupFailure{
		Resource: resource,
		ID:       id,
		Err:      err,
		Message:  err.Error(),
	})
}

// HasFailures reports whether any resource was left behind.
func (r *CleanupReport) HasFailures() bool {
	return r != nil && len(r.Failures) > 0
}
