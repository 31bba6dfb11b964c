// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/metrics"
	"github.com/tomtom215/goalrelay/internal/reddit"
)

// maxPayloadBytes is Reddit's wiki page size ceiling (2^19 = 512 KiB).
// Exceeding it on write is a hard, non-retryable error.
const maxPayloadBytes = 1 << 19

// ErrPayloadTooLarge is returned when an event payload exceeds the wiki
// page size ceiling. No write is attempted.
var ErrPayloadTooLarge = errors.New("wiki event payload exceeds page size ceiling")

// Publisher serializes domain events and writes them as wiki revisions
// on the hub subreddit, where the hub's scanner will later find them.
//
// Publishing is best-effort by design: the caller's primary action
// (creating a post, actioning a post) must never fail because the
// announcement failed, so write errors are logged and swallowed.
// The only errors Publish surfaces are precondition violations.
type Publisher struct {
	api            reddit.API
	serviceAccount string
	subreddit      string
	hubSubreddit   string
}

// NewPublisher creates a Publisher for this installation.
func NewPublisher(api reddit.API, serviceAccount, subreddit, hubSubreddit string) *Publisher {
	return &Publisher{
		api:            api,
		serviceAccount: serviceAccount,
		subreddit:      subreddit,
		hubSubreddit:   hubSubreddit,
	}
}

// PublishPostCreate announces a newly created goal post.
func (p *Publisher) PublishPostCreate(ctx context.Context, postID string, subGoal int, subredditDisplayName string) error {
	return p.publish(ctx, EventData{
		Type:                 TypePostCreate,
		PostID:               postID,
		SubGoal:              subGoal,
		SubredditDisplayName: subredditDisplayName,
	})
}

// PublishPostAction announces a moderation action taken on a goal post.
// actionedAt defaults to now when zero.
func (p *Publisher) PublishPostAction(ctx context.Context, postID string, action Action, actionedAt time.Time) error {
	if actionedAt.IsZero() {
		actionedAt = time.Now()
	}
	return p.publish(ctx, EventData{
		Type:            TypePostAction,
		PostID:          postID,
		Action:          action,
		ActionTimestamp: actionedAt.UnixMilli(),
	})
}

// publish writes one event to the hub wiki.
//
// The self-loop guard is mandatory, not an optimization: a hub
// installation announcing to itself would consume its own announcement
// and announce again, forever.
func (p *Publisher) publish(ctx context.Context, data EventData) error {
	if p.hubSubreddit == "" {
		return fmt.Errorf("hub subreddit is not configured")
	}
	if strings.EqualFold(p.subreddit, p.hubSubreddit) {
		logging.Ctx(ctx).Debug().
			Str("event_type", string(data.Type)).
			Msg("Suppressing wiki event publish on hub installation")
		return nil
	}

	pagePath, err := NormalizeWikiPath(p.serviceAccount + "/" + string(data.Type))
	if err != nil {
		return fmt.Errorf("build event page path: %w", err)
	}

	payload, err := json.Marshal(&data)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	if len(payload) > maxPayloadBytes {
		return fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLarge, len(payload), maxPayloadBytes)
	}

	// Short payloads ride in the revision reason so the consumer can
	// skip fetching the page body.
	reason := string(data.Type)
	if IsValidRevisionReason(string(payload)) {
		reason = string(payload)
	}

	if err := p.api.UpdateWikiPage(ctx, p.hubSubreddit, pagePath, string(payload), reason); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(data.Type)).Inc()
		logging.Ctx(ctx).Error().Err(err).
			Str("event_type", string(data.Type)).
			Str("page", pagePath).
			Str("hub", p.hubSubreddit).
			Msg("Failed to publish wiki event")
		return nil // Best-effort: never fail the caller's primary action.
	}

	metrics.EventsPublished.WithLabelValues(string(data.Type)).Inc()
	logging.Ctx(ctx).Info().
		Str("event_type", string(data.Type)).
		Str("post_id", data.PostID).
		Str("page", pagePath).
		Msg("Published wiki event")
	return nil
}
