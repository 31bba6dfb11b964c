// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"context"
	"fmt"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/metrics"
	"github.com/tomtom215/goalrelay/internal/reddit"
	"github.com/tomtom215/goalrelay/internal/store"
)

// Router dispatches decoded events to their handlers on the hub. The
// dispatch is an explicit switch on the type tag so adding an event
// type forces a decision here.
type Router struct {
	api              reddit.API
	registry         *store.CrosspostRegistry
	subreddit        string
	crosspostEnabled bool
}

// NewRouter creates a Router. subreddit is the hub's own subreddit,
// where mirror posts are created.
func NewRouter(api reddit.API, registry *store.CrosspostRegistry, subreddit string, crosspostEnabled bool) *Router {
	return &Router{
		api:              api,
		registry:         registry,
		subreddit:        subreddit,
		crosspostEnabled: crosspostEnabled,
	}
}

// Route applies one event. A nil return means the event is settled
// (handled, deliberately skipped, or unknown); a non-nil error means
// the revision must stay unmarked and be retried.
func (r *Router) Route(ctx context.Context, ev *WikiEvent) error {
	switch ev.Data.Type {
	case TypePostCreate:
		return r.handleCreate(ctx, ev)
	case TypePostAction:
		return r.handleAction(ctx, ev)
	default:
		logging.Ctx(ctx).Warn().
			Str("revision_id", ev.RevisionID).
			Str("event_type", string(ev.Data.Type)).
			Msg("Dropping event with unknown type")
		return nil
	}
}

// handleCreate mirrors a newly announced goal post onto the hub. The
// registry pre-check makes redelivery of the same create event a
// no-op.
func (r *Router) handleCreate(ctx context.Context, ev *WikiEvent) error {
	if !r.crosspostEnabled {
		logging.Ctx(ctx).Debug().
			Str("origin_post", ev.Data.PostID).
			Msg("Crossposting disabled, ignoring create event")
		return nil
	}

	exists, err := r.registry.HasMirror(ctx, ev.Data.PostID)
	if err != nil {
		return fmt.Errorf("check existing mirror for %s: %w", ev.Data.PostID, err)
	}
	if exists {
		logging.Ctx(ctx).Debug().
			Str("origin_post", ev.Data.PostID).
			Msg("Mirror already exists, ignoring create event")
		return nil
	}

	displayName := ev.Data.SubredditDisplayName
	if displayName == "" {
		// Legacy create events carry no display name.
		post, err := r.api.GetPost(ctx, ev.Data.PostID)
		if err != nil {
			return fmt.Errorf("resolve origin subreddit for %s: %w", ev.Data.PostID, err)
		}
		displayName = post.SubredditName
	}

	title := fmt.Sprintf("Visit r/%s, they are trying to reach %d subscribers!", displayName, ev.Data.SubGoal)
	mirror, err := r.api.SubmitCrosspost(ctx, r.subreddit, title, ev.Data.PostID)
	if err != nil {
		return fmt.Errorf("crosspost %s: %w", ev.Data.PostID, err)
	}

	if err := r.registry.RecordMapping(ctx, ev.Data.PostID, mirror.ID); err != nil {
		return fmt.Errorf("record mirror mapping %s -> %s: %w", ev.Data.PostID, mirror.ID, err)
	}

	metrics.CrosspostsCreated.Inc()
	logging.Ctx(ctx).Info().
		Str("origin_post", ev.Data.PostID).
		Str("mirror_post", mirror.ID).
		Int("goal", ev.Data.SubGoal).
		Msg("Created mirror post")
	return nil
}

// handleAction replays a moderation action from the origin onto the
// mirror post. An action for a post with no mirror is settled with a
// warning: there is nothing to act on and there never will be.
func (r *Router) handleAction(ctx context.Context, ev *WikiEvent) error {
	mirror, found, err := r.registry.MirrorFor(ctx, ev.Data.PostID)
	if err != nil {
		return fmt.Errorf("resolve mirror for %s: %w", ev.Data.PostID, err)
	}
	if !found {
		logging.Ctx(ctx).Warn().
			Str("origin_post", ev.Data.PostID).
			Str("action", string(ev.Data.Action)).
			Msg("Action event for post with no mirror, skipping")
		return nil
	}

	switch ev.Data.Action {
	case ActionRemove:
		err = r.api.RemovePost(ctx, mirror, false)
	case ActionApprove:
		err = r.api.ApprovePost(ctx, mirror)
	case ActionDelete:
		err = r.api.DeletePost(ctx, mirror)
	default:
		logging.Ctx(ctx).Warn().
			Str("origin_post", ev.Data.PostID).
			Str("action", string(ev.Data.Action)).
			Msg("Dropping event with unknown action")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply %s to mirror %s: %w", ev.Data.Action, mirror, err)
	}

	logging.Ctx(ctx).Info().
		Str("origin_post", ev.Data.PostID).
		Str("mirror_post", mirror).
		Str("action", string(ev.Data.Action)).
		Msg("Applied action to mirror post")
	return nil
}
