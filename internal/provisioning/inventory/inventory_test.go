package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/provider/fake"
	"github.com/imamik/nodefleet/internal/provisioning"
)

// pagedAPI serves canned pages keyed by token.
type pagedAPI struct {
	provider.Client
	instancePages map[string]provider.InstancePage
	volumePages   map[string]provider.VolumePage
}

func (p *pagedAPI) ListInstances(_ context.Context, _, token string) (provider.InstancePage, error) {
	return p.instancePages[token], nil
}

func (p *pagedAPI) ListVolumes(_ context.Context, _, token string) (provider.VolumePage, error) {
	return p.volumePages[token], nil
}

func TestInstances_ListDrainsPages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cloud := fake.New()
	cloud.PageSize = 2
	for _, name := range []string{"c-0001-head", "c-0002-worker", "c-0003-worker", "c-0004-worker", "c-0005-worker"} {
		role := provider.RoleWorker
		if strings.HasSuffix(name, "head") {
			role = provider.RoleHead
		}
		cloud.AddInstance("c", name, role, fake.StatusActive)
	}
	cloud.AddInstance("other", "other-0001-head", provider.RoleHead, fake.StatusActive)

	got, err := NewInstances(cloud).List(ctx, "c")
	require.NoError(t, err)

	assert.Len(t, got, 5)
	assert.Equal(t, 3, cloud.CallCount("ListInstances"))
	assert.NotContains(t, got, "other-0001-head")
}

func TestInstances_ListFiltersStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cloud := fake.New()
	cloud.AddInstance("c", "c-0001-head", provider.RoleHead, fake.StatusActive)
	cloud.AddInstance("c", "c-0002-worker", provider.RoleWorker, fake.StatusOff)
	cloud.AddInstance("c", "c-0003-worker", provider.RoleWorker, fake.StatusArchive)

	dir := NewInstances(cloud)

	tests := []struct {
		name     string
		statuses []string
		want     []string
	}{
		{"no filter", nil, []string{"c-0001-head", "c-0002-worker", "c-0003-worker"}},
		{"active", []string{fake.StatusActive}, []string{"c-0001-head"}},
		{"active or off", []string{fake.StatusActive, fake.StatusOff}, []string{"c-0001-head", "c-0002-worker"}},
		{"none match", []string{fake.StatusNew}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.List(ctx, "c", tt.statuses...)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, sortedNames(got))
		})
	}
}

func TestInstances_ListRepeatedToken(t *testing.T) {
	t.Parallel()
	api := &pagedAPI{instancePages: map[string]provider.InstancePage{
		"":   {Instances: []provider.Instance{{ID: "1", Name: "a"}}, Next: "p2"},
		"p2": {Instances: []provider.Instance{{ID: "2", Name: "b"}}, Next: "p2"},
	}}

	_, err := NewInstances(api).List(context.Background(), "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `page token "p2" repeated`)
}

func TestInstances_ListDuplicateName(t *testing.T) {
	t.Parallel()
	api := &pagedAPI{instancePages: map[string]provider.InstancePage{
		"": {Instances: []provider.Instance{{ID: "1", Name: "a"}, {ID: "2", Name: "a"}}},
	}}

	_, err := NewInstances(api).List(context.Background(), "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `share the name "a"`)
}

func TestInstances_ListError(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	cloud.ListErr = &provider.APIError{Provider: "fake", Operation: "list", StatusCode: 503, Reason: "unavailable"}

	_, err := NewInstances(cloud).List(context.Background(), "c")
	require.Error(t, err)
	assert.True(t, provider.IsAPIError(err))
}

func TestFindHead(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		instances map[string]provider.Instance
		wantID    string
		wantFound bool
		wantErr   error
	}{
		{
			name:      "empty",
			instances: map[string]provider.Instance{},
		},
		{
			name: "single head",
			instances: map[string]provider.Instance{
				"c-1-head":   {ID: "1", Name: "c-1-head", Role: provider.RoleHead},
				"c-2-worker": {ID: "2", Name: "c-2-worker", Role: provider.RoleWorker},
			},
			wantID:    "1",
			wantFound: true,
		},
		{
			name: "headless",
			instances: map[string]provider.Instance{
				"c-2-worker": {ID: "2", Name: "c-2-worker", Role: provider.RoleWorker},
			},
		},
		{
			name: "two heads",
			instances: map[string]provider.Instance{
				"c-1-head": {ID: "1", Name: "c-1-head", Role: provider.RoleHead},
				"c-3-head": {ID: "3", Name: "c-3-head", Role: provider.RoleHead},
			},
			wantErr: provisioning.ErrMultipleHeads,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, found, err := FindHead(tt.instances)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantID, head.ID)
		})
	}
}

func TestInstances_Promote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cloud := fake.New()
	w := cloud.AddInstance("c", "c-0002-worker", provider.RoleWorker, fake.StatusActive)
	dir := NewInstances(cloud)

	promoted, err := dir.Promote(ctx, "c", w)
	require.NoError(t, err)

	assert.Equal(t, w.ID, promoted.ID)
	assert.True(t, promoted.IsHead())
	assert.True(t, strings.HasPrefix(promoted.Name, "c-"))
	assert.True(t, strings.HasSuffix(promoted.Name, "-head"))

	view, err := dir.View(ctx, "c", "nbg1")
	require.NoError(t, err)
	require.NotNil(t, view.Head)
	assert.Equal(t, w.ID, view.Head.ID)
	assert.Equal(t, "nbg1", view.Region)
}

func TestInstances_PromoteError(t *testing.T) {
	t.Parallel()
	_, err := NewInstances(fake.New()).Promote(context.Background(), "c", provider.Instance{ID: "42", Name: "c-x-worker"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to promote instance c-x-worker")
}

func TestInstances_ViewMultipleHeads(t *testing.T) {
	t.Parallel()
	cloud := fake.New()
	cloud.AddInstance("c", "c-0001-head", provider.RoleHead, fake.StatusActive)
	cloud.AddInstance("c", "c-0002-head", provider.RoleHead, fake.StatusActive)

	_, err := NewInstances(cloud).View(context.Background(), "c", "r")
	assert.ErrorIs(t, err, provisioning.ErrMultipleHeads)
}

func TestCountByStatus(t *testing.T) {
	t.Parallel()
	got := CountByStatus(map[string]provider.Instance{
		"a": {Status: "active"},
		"b": {Status: "active"},
		"c": {Status: "off"},
	})
	assert.Equal(t, map[string]int{"active": 2, "off": 1}, got)
}

func TestVolumes_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cloud := fake.New()
	cloud.PageSize = 1
	cloud.AddVolume("c", "c-0001-head", "1")
	cloud.AddVolume("c", "c-0002-worker", "2")
	cloud.AddVolume("other", "other-0001-head", "9")

	got, err := NewVolumes(cloud).List(ctx, "c")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c-0001-head", "c-0002-worker"}, sortedNames(got))
	assert.Equal(t, 2, cloud.CallCount("ListVolumes"))
}

func TestVolumes_ListErrors(t *testing.T) {
	t.Parallel()

	t.Run("repeated token", func(t *testing.T) {
		api := &pagedAPI{volumePages: map[string]provider.VolumePage{
			"":  {Volumes: []provider.Volume{{ID: "1", Name: "a"}}, Next: "x"},
			"x": {Next: "x"},
		}}

		_, err := NewVolumes(api).List(context.Background(), "c")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "repeated")
	})

	t.Run("provider error", func(t *testing.T) {
		cloud := fake.New()
		cloud.ListErr = errors.New("boom")
		_, err := NewVolumes(cloud).List(context.Background(), "c")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list volumes of cluster c")
	})
}

func TestOwnedBy(t *testing.T) {
	t.Parallel()
	volumes := map[string]provider.Volume{
		"c-1-head":   {ID: "v1", Name: "c-1-head", Labels: map[string]string{"nodefleet.io/instance": "1"}},
		"c-2-worker": {ID: "v2", Name: "c-2-worker", Labels: map[string]string{"nodefleet.io/instance": "2"}},
		"legacy":     {ID: "v3", Name: "legacy", InstanceID: "3"},
	}

	got := OwnedBy(volumes, map[string]bool{"2": true, "3": true})
	assert.ElementsMatch(t, []string{"c-2-worker", "legacy"}, sortedNames(got))
}
