// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package trigger

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/reddit"
	"github.com/tomtom215/goalrelay/internal/wikievent"
)

// Scanner runs one wiki event scan pass. Implemented by
// wikievent.Scanner.
type Scanner interface {
	Scan(ctx context.Context) (int, error)
}

// ActionPublisher announces a moderation action to the hub.
// Implemented by wikievent.Publisher.
type ActionPublisher interface {
	PublishPostAction(ctx context.Context, postID string, action wikievent.Action, actionedAt time.Time) error
}

// mapModAction translates a modlog action tag to the event action it
// should announce. ok=false means the tag is not relayed.
func mapModAction(modAction string) (wikievent.Action, bool) {
	switch modAction {
	case "removelink", "spamlink":
		return wikievent.ActionRemove, true
	case "approvelink":
		return wikievent.ActionApprove, true
	}
	return "", false
}

// ModActionHandler reacts to entries in the subreddit's moderation log.
//
// The hub only cares about wikirevise actions, which signal that an
// event revision may have landed on its wiki. Leaf installations watch
// for moderation of the service account's goal posts and announce it
// to the hub, so the mirror post can follow.
type ModActionHandler struct {
	scanner          Scanner
	publisher        ActionPublisher
	serviceAccount   string
	isHub            bool
	crosspostEnabled bool
}

// NewModActionHandler creates a handler. scanner may be nil on leaf
// installations; publisher may be nil on the hub.
func NewModActionHandler(scanner Scanner, publisher ActionPublisher, serviceAccount string, isHub, crosspostEnabled bool) *ModActionHandler {
	return &ModActionHandler{
		scanner:          scanner,
		publisher:        publisher,
		serviceAccount:   serviceAccount,
		isHub:            isHub,
		crosspostEnabled: crosspostEnabled,
	}
}

// Handle processes one modlog entry.
func (h *ModActionHandler) Handle(ctx context.Context, act reddit.ModAction) error {
	if h.isHub {
		if act.Action != "wikirevise" {
			return nil
		}
		_, err := h.scanner.Scan(ctx)
		return err
	}

	action, ok := mapModAction(act.Action)
	if !ok {
		return nil
	}

	if !reddit.IsPostID(act.TargetPostID) {
		logging.Ctx(ctx).Warn().
			Str("modlog_id", act.ID).
			Str("action", act.Action).
			Str("target", act.TargetPostID).
			Msg("Modlog entry has no usable target post")
		return nil
	}

	// The service account approves its own posts right after submitting
	// them; relaying that would echo our own moderation forever.
	if strings.EqualFold(act.Moderator, h.serviceAccount) {
		return nil
	}

	// Only the service account's goal posts are mirrored, so only their
	// moderation is worth announcing.
	if !strings.EqualFold(act.TargetAuthor, h.serviceAccount) {
		return nil
	}

	// Removals are always relayed, even with crossposting off: the
	// mirror may predate the setting change. Approvals are not.
	if !h.crosspostEnabled && action == wikievent.ActionApprove {
		return nil
	}

	return h.publisher.PublishPostAction(ctx, act.TargetPostID, action, act.CreatedAt)
}
