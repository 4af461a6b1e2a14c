package orchestration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nodefleet/internal/config"
	"github.com/imamik/nodefleet/internal/metrics"
	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/provider/fake"
	"github.com/imamik/nodefleet/internal/provisioning"
	"github.com/imamik/nodefleet/internal/status"
)

var testSettings = &config.PollSettings{
	Interval:        time.Second,
	MaxAttempts:     4,
	LongMaxAttempts: 8,
	ActionInterval:  time.Second,
	ActionAttempts:  4,
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newTestReconciler(cloud *fake.Cloud, opts ...Option) *Reconciler {
	opts = append([]Option{WithPollSettings(testSettings), WithSleep(noSleep)}, opts...)
	return NewReconciler(cloud, opts...)
}

var spec = provider.NodeSpec{
	InstanceType: "s-2vcpu-4gb",
	Image:        "ubuntu-24-04-x64",
	DiskSizeGB:   10,
	Labels:       map[string]string{"team": "ml"},
}

func TestReconciler_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cloud := fake.New()
	r := newTestReconciler(cloud)

	record, err := r.RunInstances(ctx, "nyc3", "train-01", 3, spec)
	require.NoError(t, err)
	require.Len(t, record.CreatedInstanceIDs, 3)
	assert.Empty(t, record.ResumedInstanceIDs)
	assert.Equal(t, record.CreatedInstanceIDs[0], record.HeadInstanceID)

	require.NoError(t, r.WaitInstances(ctx, "nyc3", "train-01", status.Up))

	statuses, err := r.QueryInstances(ctx, "train-01")
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	for id, st := range statuses {
		assert.Equal(t, status.Up, st, id)
	}

	info, err := r.GetClusterInfo(ctx, "nyc3", "train-01")
	require.NoError(t, err)
	assert.Equal(t, record.HeadInstanceID, info.HeadInstanceID)
	assert.Equal(t, "fake", info.Provider)
	require.Len(t, info.Instances, 3)
	for name, infos := range info.Instances {
		require.Len(t, infos, 1, name)
		assert.NotEmpty(t, infos[0].InternalIP)
		assert.NotEmpty(t, infos[0].ExternalIP)
		assert.Equal(t, SSHPort, infos[0].SSHPort)
		assert.Equal(t, map[string]string{"team": "ml"}, infos[0].Tags)
	}

	require.NoError(t, r.StopInstances(ctx, "train-01", true))
	statuses, err = r.QueryInstances(ctx, "train-01")
	require.NoError(t, err)
	assert.Equal(t, status.Up, statuses[record.HeadInstanceID])
	stopped := 0
	for _, st := range statuses {
		if st == status.Stopped {
			stopped++
		}
	}
	assert.Equal(t, 2, stopped)

	// Running again resumes the stopped workers.
	again, err := r.RunInstances(ctx, "nyc3", "train-01", 3, spec)
	require.NoError(t, err)
	assert.Len(t, again.ResumedInstanceIDs, 2)
	assert.Empty(t, again.CreatedInstanceIDs)
	assert.Equal(t, record.HeadInstanceID, again.HeadInstanceID)

	report, err := r.TerminateInstances(ctx, "train-01", false)
	require.NoError(t, err)
	assert.False(t, report.HasFailures())

	statuses, err = r.QueryInstances(ctx, "train-01")
	require.NoError(t, err)
	assert.Empty(t, statuses)
	assert.Empty(t, cloud.Volumes())
}

func TestReconciler_QueryUnmappedStatus(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	cloud.AddInstance("c", "c-0000-head", provider.RoleHead, "locked")

	_, err := newTestReconciler(cloud).QueryInstances(context.Background(), "c")
	assert.ErrorIs(t, err, status.ErrUnmappedStatus)
}

func TestReconciler_QueryProjection(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	cloud.NeverActivate = true
	a := cloud.AddInstance("c", "c-0001-worker", provider.RoleWorker, fake.StatusArchive)
	n := cloud.AddInstance("c", "c-0002-worker", provider.RoleWorker, fake.StatusNew)
	o := cloud.AddInstance("c", "c-0003-worker", provider.RoleWorker, fake.StatusOff)

	statuses, err := newTestReconciler(cloud).QueryInstances(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]status.Status{
		a.ID: status.Init,
		n.ID: status.Init,
		o.ID: status.Stopped,
	}, statuses)
}

func TestReconciler_GetClusterInfoWithoutHead(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	cloud.AddInstance("c", "c-0001-worker", provider.RoleWorker, fake.StatusActive)

	_, err := newTestReconciler(cloud).GetClusterInfo(context.Background(), "r", "c")
	assert.ErrorIs(t, err, provisioning.ErrNoHead)
}

func TestReconciler_GetClusterInfoRequiresBothAddresses(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	cloud.NoExternalIP = true
	cloud.AddInstance("c", "c-0001-head", provider.RoleHead, fake.StatusActive)
	cloud.AddInstance("c", "c-0002-worker", provider.RoleWorker, fake.StatusActive)

	info, err := newTestReconciler(cloud).GetClusterInfo(context.Background(), "r", "c")
	require.Error(t, err)
	assert.Nil(t, info)
	assert.ErrorContains(t, err, "both internal and external IPv4 addresses are required")
	assert.ErrorContains(t, err, `external ""`)
}

func TestReconciler_RunWrapsErrors(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	for i := range 3 {
		cloud.AddInstance("c", "c-000"+string(rune('0'+i))+"-worker", provider.RoleWorker, fake.StatusActive)
	}

	_, err := newTestReconciler(cloud).RunInstances(context.Background(), "r", "c", 2, spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, provisioning.ErrOverProvisioned)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to run instances of cluster c"))
}

func TestReconciler_PortsAreNoOps(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	r := newTestReconciler(cloud)

	assert.NoError(t, r.OpenPorts(context.Background(), "c", []string{"8080", "9000-9010"}))
	assert.NoError(t, r.CleanupPorts(context.Background(), "c", []string{"8080"}))
	assert.Zero(t, cloud.CallCount("ListInstances"))
}

func TestReconciler_RecordsMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cloud := fake.New()
	rec := metrics.NewRecorder()
	r := newTestReconciler(cloud, WithRecorder(rec))

	_, err := r.RunInstances(ctx, "r", "c", 1, spec)
	require.NoError(t, err)
	_, err = r.QueryInstances(ctx, "c")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(rec.Registry(),
		"nodefleet_reconciler_operations_total",
		"nodefleet_provider_api_calls_total",
		"nodefleet_cluster_instances",
	)
	require.NoError(t, err)
	assert.Positive(t, count)

	problems, err := testutil.GatherAndLint(rec.Registry())
	require.NoError(t, err)
	assert.Empty(t, problems)
}
