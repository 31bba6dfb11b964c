// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

// Package metrics defines the Prometheus instrumentation for the relay.
// All collectors are registered on the default registry via promauto and
// exposed by the HTTP server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RevisionsScanned counts wiki revisions returned by revision
	// listings, before any filtering.
	RevisionsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalrelay_revisions_scanned_total",
		Help: "Wiki revisions seen by the scanner before filtering.",
	})

	// RevisionsProcessed counts revisions that were decoded and routed.
	RevisionsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalrelay_revisions_processed_total",
		Help: "Wiki revisions decoded and routed to a handler.",
	})

	// RevisionsSkipped counts revisions dismissed without routing,
	// labelled by reason (already_processed, wrong_author, unparseable).
	RevisionsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goalrelay_revisions_skipped_total",
		Help: "Wiki revisions dismissed without routing, by reason.",
	}, []string{"reason"})

	// RevisionsFailed counts revisions whose routing failed and will be
	// retried on a later scan.
	RevisionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalrelay_revisions_failed_total",
		Help: "Wiki revisions whose handling failed and will be retried.",
	})

	// EventsPublished counts successful event writes to the hub wiki,
	// labelled by event type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goalrelay_events_published_total",
		Help: "Wiki events written to the hub, by event type.",
	}, []string{"type"})

	// EventPublishFailures counts failed event writes, labelled by
	// event type. Publish failures are swallowed, so this counter is
	// the only trace of a lost announcement.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goalrelay_event_publish_failures_total",
		Help: "Failed wiki event writes, by event type.",
	}, []string{"type"})

	// CrosspostsCreated counts mirror posts created on the hub.
	CrosspostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalrelay_crossposts_created_total",
		Help: "Mirror posts created on the hub subreddit.",
	})

	// ScanDuration observes wall time of full scan passes.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "goalrelay_scan_duration_seconds",
		Help:    "Duration of full wiki revision scan passes.",
		Buckets: prometheus.DefBuckets,
	})

	// GoalUpdatePasses counts sticky-post update passes, labelled by
	// outcome (updated, completed, skipped, failed).
	GoalUpdatePasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goalrelay_goal_update_passes_total",
		Help: "Goal post update passes, by outcome.",
	}, []string{"outcome"})

	// RedditAPIRequests counts outbound Reddit API calls, labelled by
	// endpoint and HTTP status.
	RedditAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goalrelay_reddit_api_requests_total",
		Help: "Outbound Reddit API requests, by endpoint and HTTP status.",
	}, []string{"endpoint", "status"})
)
