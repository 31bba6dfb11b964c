// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

// Package trigger contains the long-running services that react to
// subreddit activity: the modlog tail feeding the ModActionHandler,
// the periodic scan pass on the hub, the goal post update pass on leaf
// installations, and the deletion watcher. All of them run under the
// supervision tree and keep their cross-invocation state in
// internal/store.
package trigger
