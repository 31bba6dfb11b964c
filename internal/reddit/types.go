// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package reddit

import (
	"regexp"
	"time"
)

// Post is the subset of a Reddit submission GoalRelay works with.
type Post struct {
	// ID is the fullname, e.g. "t3_17417kp".
	ID            string
	Title         string
	SubredditName string
	AuthorID      string
	CreatedAt     time.Time
	Deleted       bool
}

// Subreddit describes the community an installation runs in.
type Subreddit struct {
	// ID is the fullname, e.g. "t5_2qh23".
	ID          string
	Name        string
	Subscribers int
}

// WikiRevision is one versioned edit to a wiki page: the shared medium's
// unit of communication between installations.
type WikiRevision struct {
	// ID is the revision UUID assigned by Reddit.
	ID string

	// Page is the wiki page path as reported by the listing, e.g.
	// "subgoal-app/postcreateevent" or the legacy "post".
	Page string

	// Reason is the human-readable change comment. Short event payloads
	// travel here; larger ones require fetching the page body.
	Reason string

	// Author is the username that made the revision.
	Author string

	// Date is when the revision was made.
	Date time.Time
}

// ModAction is one entry from a subreddit's moderation log.
type ModAction struct {
	// ID is the modlog entry ID, e.g. "ModAction_8f3e...".
	ID string

	// Action is the modlog action tag, e.g. "removelink" or "wikirevise".
	Action string

	// Moderator is the acting moderator's username.
	Moderator string

	// TargetPostID is the fullname of the actioned post, if any.
	TargetPostID string

	// TargetAuthor is the username of the actioned post's author, if any.
	TargetAuthor string

	// CreatedAt is when the action was taken.
	CreatedAt time.Time
}

// postIDPattern matches a link fullname: "t3_" plus alphanumerics.
var postIDPattern = regexp.MustCompile(`^t3_[A-Za-z0-9]+$`)

// IsPostID reports whether s has the shape of a link fullname.
func IsPostID(s string) bool {
	return postIDPattern.MatchString(s)
}
