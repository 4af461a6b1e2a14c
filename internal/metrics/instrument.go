package metrics

import (
	"context"
	"time"

	"github.com/imamik/nodefleet/internal/provider"
)

// Instrument wraps client so that every API call is counted and timed.
// A nil recorder returns client unchanged.
func Instrument(client provider.Client, rec *Recorder) provider.Client {
	if rec == nil {
		return client
	}
	return &instrumented{Client: client, rec: rec}
}

type instrumented struct {
	provider.Client
	rec *Recorder
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	i.rec.RecordAPICall(i.Client.Name(), op, err, time.Since(start))
}

func (i *instrumented) ListInstances(ctx context.Context, cluster, pageToken string) (page provider.InstancePage, err error) {
	defer func(start time.Time) { i.observe("list_instances", start, err) }(time.Now())
	return i.Client.ListInstances(ctx, cluster, pageToken)
}

func (i *instrumented) CreateInstance(ctx context.Context, req provider.CreateInstanceRequest) (inst provider.Instance, a provider.Action, err error) {
	defer func(start time.Time) { i.observe("create_instance", start, err) }(time.Now())
	return i.Client.CreateInstance(ctx, req)
}

func (i *instrumented) PowerOn(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { i.observe("power_on", start, err) }(time.Now())
	return i.Client.PowerOn(ctx, id)
}

func (i *instrumented) Shutdown(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { i.observe("shutdown", start, err) }(time.Now())
	return i.Client.Shutdown(ctx, id)
}

func (i *instrumented) Destroy(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { i.observe("destroy", start, err) }(time.Now())
	return i.Client.Destroy(ctx, id)
}

func (i *instrumented) Rename(ctx context.Context, id, name string, role provider.Role) (err error) {
	defer func(start time.Time) { i.observe("rename", start, err) }(time.Now())
	return i.Client.Rename(ctx, id, name, role)
}

func (i *instrumented) GetInstance(ctx context.Context, id string) (inst provider.Instance, err error) {
	defer func(start time.Time) { i.observe("get_instance", start, err) }(time.Now())
	return i.Client.GetInstance(ctx, id)
}

func (i *instrumented) GetAction(ctx context.Context, id string) (a provider.Action, err error) {
	defer func(start time.Time) { i.observe("get_action", start, err) }(time.Now())
	return i.Client.GetAction(ctx, id)
}

func (i *instrumented) CreateVolume(ctx context.Context, req provider.CreateVolumeRequest) (v provider.Volume, a provider.Action, err error) {
	defer func(start time.Time) { i.observe("create_volume", start, err) }(time.Now())
	return i.Client.CreateVolume(ctx, req)
}

func (i *instrumented) AttachVolume(ctx context.Context, volumeID, instanceID string) (a provider.Action, err error) {
	defer func(start time.Time) { i.observe("attach_volume", start, err) }(time.Now())
	return i.Client.AttachVolume(ctx, volumeID, instanceID)
}

func (i *instrumented) DeleteVolume(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { i.observe("delete_volume", start, err) }(time.Now())
	return i.Client.DeleteVolume(ctx, id)
}

func (i *instrumented) ListVolumes(ctx context.Context, cluster, pageToken string) (page provider.VolumePage, err error) {
	defer func(start time.Time) { i.observe("list_volumes", start, err) }(time.Now())
	return i.Client.ListVolumes(ctx, cluster, pageToken)
}
