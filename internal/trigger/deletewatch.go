// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package trigger

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/reddit"
	"github.com/tomtom215/goalrelay/internal/store"
	"github.com/tomtom215/goalrelay/internal/wikievent"
)

// DeletionWatcher notices when a tracked goal post disappears (deleted
// by its author or gone from the API) and announces a delete event so
// the hub removes the mirror. The post is then untracked and its
// pending refresh canceled.
//
// Implements suture.Service.
type DeletionWatcher struct {
	api       reddit.API
	goals     *store.GoalStore
	queue     *store.UpdateQueue
	publisher ActionPublisher
	interval  time.Duration
}

// NewDeletionWatcher creates the watcher.
func NewDeletionWatcher(api reddit.API, goals *store.GoalStore, queue *store.UpdateQueue, publisher ActionPublisher, interval time.Duration) *DeletionWatcher {
	return &DeletionWatcher{
		api:       api,
		goals:     goals,
		queue:     queue,
		publisher: publisher,
		interval:  interval,
	}
}

// Serve implements suture.Service.
func (w *DeletionWatcher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.pass(logging.ContextWithNewCorrelationID(ctx))
		}
	}
}

// pass checks every tracked post once. Per-post failures are logged
// and the post stays tracked for the next pass.
func (w *DeletionWatcher) pass(ctx context.Context) {
	tracked, err := w.goals.Tracked(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to list tracked posts")
		return
	}

	for _, postID := range tracked {
		post, err := w.api.GetPost(ctx, postID)
		switch {
		case errors.Is(err, reddit.ErrPostNotFound):
			// Treated as deleted.
		case err != nil:
			logging.Ctx(ctx).Error().Err(err).
				Str("post_id", postID).
				Msg("Failed to check tracked post")
			continue
		case !post.Deleted:
			continue
		}

		w.handleDeleted(ctx, postID)
	}
}

func (w *DeletionWatcher) handleDeleted(ctx context.Context, postID string) {
	logging.Ctx(ctx).Info().
		Str("post_id", postID).
		Msg("Tracked goal post was deleted")

	if err := w.publisher.PublishPostAction(ctx, postID, wikievent.ActionDelete, time.Now()); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("post_id", postID).
			Msg("Failed to announce post deletion")
		return // Keep tracking so the announcement is retried.
	}

	if err := w.goals.Untrack(ctx, postID); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("post_id", postID).
			Msg("Failed to untrack deleted post")
	}
	if err := w.queue.Cancel(ctx, postID); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("post_id", postID).
			Msg("Failed to cancel updates for deleted post")
	}
}

func (w *DeletionWatcher) String() string {
	return "deletion-watcher"
}
