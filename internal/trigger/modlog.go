// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package trigger

import (
	"context"
	"time"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/reddit"
	"github.com/tomtom215/goalrelay/internal/store"
)

// modlogPageLimit caps each modlog listing request.
const modlogPageLimit = 100

// ModLogPoller tails the subreddit's moderation log and feeds new
// entries to the ModActionHandler. The position survives restarts via
// a store cursor.
//
// Implements suture.Service.
type ModLogPoller struct {
	api       reddit.API
	handler   *ModActionHandler
	cursor    *store.Cursor
	subreddit string
	interval  time.Duration
}

// NewModLogPoller creates a poller over the given subreddit's modlog.
func NewModLogPoller(api reddit.API, handler *ModActionHandler, cursor *store.Cursor, subreddit string, interval time.Duration) *ModLogPoller {
	return &ModLogPoller{
		api:       api,
		handler:   handler,
		cursor:    cursor,
		subreddit: subreddit,
		interval:  interval,
	}
}

// Serve implements suture.Service: poll immediately, then on every
// tick, until the context is canceled.
func (p *ModLogPoller) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches entries newer than the cursor and handles them oldest
// first. Handler failures are logged and do not block the cursor: the
// scanner and the hub ledger own retry semantics, not the modlog tail.
func (p *ModLogPoller) poll(ctx context.Context) {
	ctx = logging.ContextWithNewCorrelationID(ctx)

	before, err := p.cursor.Get(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to read modlog cursor")
		return
	}

	actions, err := p.api.ListModActions(ctx, p.subreddit, modlogPageLimit, before)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to list modlog")
		return
	}
	if len(actions) == 0 {
		return
	}

	// Listing is newest first; handle in the order things happened.
	for i := len(actions) - 1; i >= 0; i-- {
		act := actions[i]
		if err := p.handler.Handle(ctx, act); err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("modlog_id", act.ID).
				Str("action", act.Action).
				Msg("Modlog entry handling failed")
		}
	}

	if err := p.cursor.Set(ctx, actions[0].ID); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to advance modlog cursor")
	}
}

func (p *ModLogPoller) String() string {
	return "modlog-poller"
}
