// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"regexp"
	"strconv"
)

// Legacy wiki event format.
//
// Early deployments wrote events to four fixed top-level pages and
// encoded the event in the revision reason as a human-readable
// sentence. Hubs must keep decoding these indefinitely: old leaf
// installations still in the wild publish nothing else.
const (
	legacyPageRemove  = "/remove"
	legacyPageApprove = "/approve"
	legacyPageDelete  = "/delete"
	legacyPagePost    = "/post"
)

var (
	// "Post t3_abc123 with goal 5000"
	legacyCreatePattern = regexp.MustCompile(`Post (t3_[\w\d]+) with goal (\d+)`)

	// "Dispatch remove for t3_abc123"
	legacyActionPatterns = map[string]*regexp.Regexp{
		legacyPageRemove:  regexp.MustCompile(`Dispatch remove for (t3_[\w\d]+)`),
		legacyPageApprove: regexp.MustCompile(`Dispatch approve for (t3_[\w\d]+)`),
		legacyPageDelete:  regexp.MustCompile(`Dispatch delete for (t3_[\w\d]+)`),
	}

	legacyPageActions = map[string]Action{
		legacyPageRemove:  ActionRemove,
		legacyPageApprove: ActionApprove,
		legacyPageDelete:  ActionDelete,
	}
)

// decodeLegacy attempts to interpret a revision in the legacy sentence
// format. Returns (event, true) on a match; (zero, false) means the
// revision is not legacy and the caller should try the current format.
//
// page must be the full normalized path ("/post", "/remove",
// "/approve", "/delete").
func decodeLegacy(page, reason string, revisedAt int64) (EventData, bool) {
	switch page {
	case legacyPagePost:
		m := legacyCreatePattern.FindStringSubmatch(reason)
		if m == nil {
			return EventData{}, false
		}
		goal, err := strconv.Atoi(m[2])
		if err != nil || goal <= 0 {
			return EventData{}, false
		}
		return EventData{
			Type:    TypePostCreate,
			PostID:  m[1],
			SubGoal: goal,
		}, true

	case legacyPageRemove, legacyPageApprove, legacyPageDelete:
		m := legacyActionPatterns[page].FindStringSubmatch(reason)
		if m == nil {
			return EventData{}, false
		}
		return EventData{
			Type:            TypePostAction,
			PostID:          m[1],
			Action:          legacyPageActions[page],
			ActionTimestamp: revisedAt,
		}, true
	}

	return EventData{}, false
}

// isLegacyPage reports whether the given normalized path is one of the
// fixed top-level legacy event pages.
func isLegacyPage(page string) bool {
	switch page {
	case legacyPagePost, legacyPageRemove, legacyPageApprove, legacyPageDelete:
		return true
	}
	return false
}
