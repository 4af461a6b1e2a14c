package hcloud

import (
	"context"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/nodefleet/internal/provider"
)

// actionIDSeparator joins the ids of a request's action and its follow-up
// actions into one provider action id.
const actionIDSeparator = ","

// GetAction implements provider.InstanceAPI. A composite id is resolved
// member by member.
func (c *RealClient) GetAction(ctx context.Context, id string) (provider.Action, error) {
	parts := strings.Split(id, actionIDSeparator)
	actions := make([]*hcloud.Action, 0, len(parts))
	for _, part := range parts {
		n, err := parseID("action", part)
		if err != nil {
			return provider.Action{}, err
		}
		action, resp, err := c.client.Action.GetByID(ctx, n)
		if err != nil {
			return provider.Action{}, apiError("get action", resp, err)
		}
		if action == nil {
			return provider.Action{}, notFound("get action", "action", part)
		}
		actions = append(actions, action)
	}
	return combineActions(actions...), nil
}

// combineActions folds a request's action and its next actions into one.
// The result completes only once every member has completed and errors as
// soon as any member errors. Nil actions completed synchronously.
func combineActions(actions ...*hcloud.Action) provider.Action {
	out := provider.Action{Status: provider.ActionCompleted}
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		if a == nil {
			continue
		}
		cur := toAction(a)
		ids = append(ids, cur.ID)
		if out.Command == "" {
			out.Command = cur.Command
		}
		switch {
		case out.Status == provider.ActionErrored:
		case cur.Status == provider.ActionErrored:
			out.Status = cur.Status
			out.Command = cur.Command
			out.Error = cur.Error
		case cur.Status == provider.ActionInProgress:
			out.Status = provider.ActionInProgress
		}
	}
	out.ID = strings.Join(ids, actionIDSeparator)
	return out
}

// toAction converts an hcloud action. A nil action means the request
// completed synchronously.
func toAction(a *hcloud.Action) provider.Action {
	if a == nil {
		return provider.Action{Status: provider.ActionCompleted}
	}
	out := provider.Action{
		ID:      formatID(a.ID),
		Command: a.Command,
	}
	switch a.Status {
	case hcloud.ActionStatusSuccess:
		out.Status = provider.ActionCompleted
	case hcloud.ActionStatusError:
		out.Status = provider.ActionErrored
		out.Error = a.ErrorCode + ": " + a.ErrorMessage
	default:
		out.Status = provider.ActionInProgress
	}
	return out
}
