// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

// Package goalpost manages the lifecycle of subscriber goal posts on a
// leaf installation: registration when a goal post is created, and the
// periodic update pass that checks goals against the live subscriber
// count.
package goalpost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/metrics"
	"github.com/tomtom215/goalrelay/internal/reddit"
	"github.com/tomtom215/goalrelay/internal/store"
)

// CreatePublisher announces a new goal post to the hub. Implemented by
// wikievent.Publisher.
type CreatePublisher interface {
	PublishPostCreate(ctx context.Context, postID string, subGoal int, subredditDisplayName string) error
}

// Manager owns goal records, their tracking, and their refresh queue.
type Manager struct {
	api            reddit.API
	goals          *store.GoalStore
	queue          *store.UpdateQueue
	publisher      CreatePublisher
	updateInterval time.Duration
}

// NewManager creates a Manager. updateInterval is how far ahead a post
// is requeued after a refresh.
func NewManager(api reddit.API, goals *store.GoalStore, queue *store.UpdateQueue, publisher CreatePublisher, updateInterval time.Duration) *Manager {
	return &Manager{
		api:            api,
		goals:          goals,
		queue:          queue,
		publisher:      publisher,
		updateInterval: updateInterval,
	}
}

// Register takes a freshly created goal post under management: persist
// the goal, track the post, queue its first refresh, and announce it
// to the hub. The announcement suppresses itself on hub installations.
func (m *Manager) Register(ctx context.Context, postID string, goal int) error {
	if !reddit.IsPostID(postID) {
		return fmt.Errorf("register goal post: invalid post id %q", postID)
	}
	if goal <= 0 {
		return fmt.Errorf("register goal post %s: goal must be positive, got %d", postID, goal)
	}

	sub, err := m.api.CurrentSubreddit(ctx)
	if err != nil {
		return fmt.Errorf("register goal post %s: %w", postID, err)
	}

	rec := &store.GoalRecord{
		PostID:           postID,
		Goal:             goal,
		RecentSubscriber: sub.Subscribers,
	}
	if err := m.goals.Put(ctx, rec); err != nil {
		return fmt.Errorf("persist goal record: %w", err)
	}
	if err := m.goals.Track(ctx, postID); err != nil {
		return fmt.Errorf("track goal post: %w", err)
	}
	if err := m.queue.Queue(ctx, postID, time.Now()); err != nil {
		return fmt.Errorf("queue first update: %w", err)
	}

	if err := m.publisher.PublishPostCreate(ctx, postID, goal, sub.Name); err != nil {
		return fmt.Errorf("announce goal post: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("post_id", postID).
		Int("goal", goal).
		Int("subscribers", sub.Subscribers).
		Msg("Registered goal post")
	return nil
}

// RunUpdatePass refreshes every queued post that is due: update the
// recorded subscriber count, settle completion, then requeue or retire
// the post. Per-post failures are logged and the post is requeued so
// one bad record cannot stall the queue.
func (m *Manager) RunUpdatePass(ctx context.Context) error {
	now := time.Now()

	due, err := m.queue.Due(ctx, now, 0)
	if err != nil {
		return fmt.Errorf("list due updates: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	sub, err := m.api.CurrentSubreddit(ctx)
	if err != nil {
		return fmt.Errorf("fetch subscriber count: %w", err)
	}

	for _, item := range due {
		outcome := m.updateOne(ctx, item.PostID, sub.Subscribers, now)
		metrics.GoalUpdatePasses.WithLabelValues(outcome).Inc()
	}
	return nil
}

// updateOne refreshes a single post and returns the metrics outcome
// label.
func (m *Manager) updateOne(ctx context.Context, postID string, subscribers int, now time.Time) string {
	rec, err := m.goals.Get(ctx, postID)
	if errors.Is(err, store.ErrGoalNotFound) {
		// A queue entry without a record is an orphan; retire it.
		logging.Ctx(ctx).Warn().
			Str("post_id", postID).
			Msg("Queued post has no goal record, retiring")
		m.retire(ctx, postID)
		return "skipped"
	}
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("post_id", postID).
			Msg("Failed to load goal record")
		m.requeue(ctx, postID, now)
		return "failed"
	}

	if rec.RecentSubscriber != subscribers {
		rec.RecentSubscriber = subscribers
		if err := m.goals.Put(ctx, rec); err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("post_id", postID).
				Msg("Failed to update subscriber count")
			m.requeue(ctx, postID, now)
			return "failed"
		}
	}

	if subscribers >= rec.Goal && !rec.Completed() {
		if err := m.goals.MarkCompleted(ctx, postID, now); err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("post_id", postID).
				Msg("Failed to mark goal completed")
			m.requeue(ctx, postID, now)
			return "failed"
		}
		logging.Ctx(ctx).Info().
			Str("post_id", postID).
			Int("goal", rec.Goal).
			Int("subscribers", subscribers).
			Msg("Subscriber goal reached")
		m.retire(ctx, postID)
		return "completed"
	}

	if rec.Completed() {
		m.retire(ctx, postID)
		return "completed"
	}

	m.requeue(ctx, postID, now)
	return "updated"
}

func (m *Manager) requeue(ctx context.Context, postID string, now time.Time) {
	if err := m.queue.Queue(ctx, postID, now.Add(m.updateInterval)); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("post_id", postID).
			Msg("Failed to requeue update")
	}
}

func (m *Manager) retire(ctx context.Context, postID string) {
	if err := m.queue.Cancel(ctx, postID); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("post_id", postID).
			Msg("Failed to cancel updates")
	}
}
