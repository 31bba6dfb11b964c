// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/goalrelay/internal/reddit"
)

// Type discriminates the event union. The string values are the wire
// format tags and must never change: remote installations on older
// versions compare them verbatim.
type Type string

const (
	// TypePostCreate announces a newly created goal post.
	TypePostCreate Type = "PostCreateEvent"
	// TypePostAction announces a moderation action taken on a goal post.
	TypePostAction Type = "PostActionEvent"
)

// KnownTypes lists every valid event type tag.
var KnownTypes = []Type{TypePostCreate, TypePostAction}

// IsKnownType reports whether s matches a known event type tag.
func IsKnownType(s string) bool {
	for _, t := range KnownTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Action is a moderation action mirrored across installations.
type Action string

const (
	ActionRemove  Action = "remove"
	ActionApprove Action = "approve"
	ActionDelete  Action = "delete"
)

// IsValidAction reports whether a is one of the three mirrored actions.
func IsValidAction(a Action) bool {
	return a == ActionRemove || a == ActionApprove || a == ActionDelete
}

// EventData is the payload of a WikiEvent, discriminated by Type.
//
// Create events carry PostID, SubGoal, and optionally the display name
// of the originating subreddit. Action events carry PostID, Action, and
// the time the action was taken. The unused fields of the other arm
// stay at their zero values and are omitted on the wire.
type EventData struct {
	Type   Type   `json:"type"`
	PostID string `json:"postId"`

	// Create event fields.
	SubGoal              int    `json:"subGoal,omitempty"`
	SubredditDisplayName string `json:"subredditDisplayName,omitempty"`

	// Action event fields.
	Action          Action `json:"action,omitempty"`
	ActionTimestamp int64  `json:"actionTimestamp,omitempty"`
}

// WikiEvent is the unit of cross-installation communication. It is
// constructed transiently from a wiki revision and never persisted;
// only its effects (ledger entry, registry entry, mirror post) are.
type WikiEvent struct {
	// RevisionID doubles as the event's unique ID.
	RevisionID string `json:"revisionId"`

	// Timestamp is when the wiki revision was made, in milliseconds
	// since epoch. It is the authoritative ordering key and always
	// comes from the revision itself, never from the payload.
	Timestamp int64 `json:"timestamp"`

	Data EventData `json:"data"`
}

// IsEventData is the shape guard for the payload: the type tag must be
// one of the known values. It deliberately checks nothing else so a
// value can pass here and still fail the full per-tag validation.
func IsEventData(d *EventData) bool {
	return d != nil && IsKnownType(string(d.Type))
}

// Validate is the full per-tag guard. A payload that looks like event
// data can still fail here, e.g. an action event with an unknown action
// or a create event without a goal.
func (d *EventData) Validate() bool {
	if !IsEventData(d) {
		return false
	}

	switch d.Type {
	case TypePostCreate:
		return reddit.IsPostID(d.PostID) && d.SubGoal > 0
	case TypePostAction:
		return reddit.IsPostID(d.PostID) && IsValidAction(d.Action) && d.ActionTimestamp > 0
	default:
		return false
	}
}

// Validate checks the complete event: a present revision ID and
// timestamp plus a payload passing its per-tag guard.
func (e *WikiEvent) Validate() bool {
	return e != nil && e.RevisionID != "" && e.Timestamp > 0 && e.Data.Validate()
}

// ParseEventData parses a JSON payload and applies both guards.
// Returns false when the bytes are not valid event data of any era.
func ParseEventData(raw []byte) (EventData, bool) {
	var d EventData
	if err := json.Unmarshal(raw, &d); err != nil {
		return EventData{}, false
	}
	if !d.Validate() {
		return EventData{}, false
	}
	return d, true
}
