// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

// Package wikievent implements the wiki-revision event channel between
// installations: leaf subreddits announce goal posts and moderation
// actions by revising pages under the service account's namespace on
// the hub wiki, and the hub scans its revision log to consume them.
//
// The write side is the Publisher; the read side is Scanner -> Decoder
// -> Router. Exactly-once consumption is approximated with a
// revision-ID ledger plus a timestamp cutoff, both in internal/store.
// The Decoder understands two wire formats: the current JSON payload
// (in the revision reason when short enough, otherwise in the page
// body) and the legacy fixed-page sentence format, which must remain
// decodable for as long as old leaf installations exist.
package wikievent
