package naming

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	t.Parallel()
	pattern := regexp.MustCompile(`^train-01-[0-9a-f]{4}-head$`)

	name := Instance("train-01", "head")
	assert.Regexp(t, pattern, name)
}

func TestInstance_SuffixVaries(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for range 20 {
		seen[Instance("c", "worker")] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestInstanceWithSuffix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "c-beef-worker", InstanceWithSuffix("c", "beef", "worker"))
	assert.Equal(t, "c-beef-worker", Volume("c-beef-worker"))
}

func TestRoleFromName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"head", "train-01-ab12-head", "head"},
		{"worker", "train-01-ab12-worker", "worker"},
		{"no suffix", "train-01-ab12", ""},
		{"head inside name", "head-cluster-ab12-worker", "worker"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RoleFromName(tt.in))
		})
	}
}

func TestClusterPrefix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "train-01-", ClusterPrefix("train-01"))
}
