// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/metrics"
	"github.com/tomtom215/goalrelay/internal/reddit"
	"github.com/tomtom215/goalrelay/internal/store"
)

// Scanner walks the hub wiki's revision listing, decodes unseen event
// revisions, and routes them in timestamp order. All cross-scan state
// lives in the ledger, so overlapping or restarted scans converge on
// the same result.
type Scanner struct {
	api             reddit.API
	decoder         *Decoder
	router          *Router
	ledger          *store.Ledger
	serviceAccount  string
	hubSubreddit    string
	pageLimit       int
	revisionTimeout time.Duration
}

// NewScanner creates a Scanner. pageLimit caps each revision-listing
// request; revisionTimeout bounds the handling of a single revision.
func NewScanner(api reddit.API, decoder *Decoder, router *Router, ledger *store.Ledger,
	serviceAccount, hubSubreddit string, pageLimit int, revisionTimeout time.Duration) *Scanner {
	return &Scanner{
		api:             api,
		decoder:         decoder,
		router:          router,
		ledger:          ledger,
		serviceAccount:  serviceAccount,
		hubSubreddit:    hubSubreddit,
		pageLimit:       pageLimit,
		revisionTimeout: revisionTimeout,
	}
}

// Scan runs one full pass: collect, order, filter, then handle each
// revision oldest-first. It returns the number of revisions routed.
//
// Failures on individual revisions do not abort the pass; the revision
// stays unmarked and is retried on the next scan. Only listing or
// ledger failures abort.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff, err := s.ledger.Cutoff(ctx)
	if err != nil {
		return 0, fmt.Errorf("read cutoff: %w", err)
	}

	revisions, err := s.collect(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(revisions) == 0 {
		return 0, nil
	}

	// Oldest first: effects must land in the order the events were
	// published, whatever order the listing returned them in.
	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].Date.Before(revisions[j].Date)
	})

	revisions, err = s.filterProcessed(ctx, revisions)
	if err != nil {
		return 0, err
	}

	routed := 0
	for _, rev := range revisions {
		if err := ctx.Err(); err != nil {
			return routed, err
		}
		if s.handleOne(ctx, rev) {
			routed++
		}
	}

	logging.Ctx(ctx).Info().
		Int("candidates", len(revisions)).
		Int("routed", routed).
		Dur("elapsed", time.Since(start)).
		Msg("Scan pass complete")
	return routed, nil
}

// collect pages through the revision listing, newest first, stopping
// once revisions at or below the cutoff appear. Only revisions
// authored by the service account survive.
func (s *Scanner) collect(ctx context.Context, cutoff time.Time) ([]reddit.WikiRevision, error) {
	var out []reddit.WikiRevision
	after := ""

	for {
		page, next, err := s.api.ListWikiRevisions(ctx, s.hubSubreddit, s.pageLimit, after)
		if err != nil {
			return nil, fmt.Errorf("list wiki revisions: %w", err)
		}

		for _, rev := range page {
			metrics.RevisionsScanned.Inc()

			if rev.ID == "" || rev.Page == "" || rev.Date.IsZero() {
				logging.Ctx(ctx).Warn().
					Str("revision_id", rev.ID).
					Str("page", rev.Page).
					Msg("Skipping malformed revision listing entry")
				continue
			}
			if rev.Date.Before(cutoff) {
				// Listing is newest-first: everything from here on is
				// history we have already settled. Revisions exactly at
				// the cutoff stay in, the ledger dedupes them; two
				// revisions can share a timestamp.
				return out, nil
			}
			if !strings.EqualFold(rev.Author, s.serviceAccount) {
				metrics.RevisionsSkipped.WithLabelValues("wrong_author").Inc()
				continue
			}
			out = append(out, rev)
		}

		if next == "" {
			return out, nil
		}
		after = next
	}
}

// filterProcessed drops revisions the ledger already has, in one batch
// lookup.
func (s *Scanner) filterProcessed(ctx context.Context, revisions []reddit.WikiRevision) ([]reddit.WikiRevision, error) {
	ids := make([]string, len(revisions))
	for i, rev := range revisions {
		ids[i] = rev.ID
	}

	status, err := s.ledger.GetProcessedStatus(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("batch ledger lookup: %w", err)
	}

	kept := revisions[:0]
	for _, rev := range revisions {
		if status[rev.ID] != nil {
			metrics.RevisionsSkipped.WithLabelValues("already_processed").Inc()
			continue
		}
		kept = append(kept, rev)
	}
	return kept, nil
}

// handleOne decodes and routes a single revision under the per-revision
// timeout, then settles the ledger. Returns true when the revision was
// decoded and routed.
//
// Settlement rules: undecodable revisions are marked processed (they
// will never decode differently); infrastructure and routing failures
// leave the revision unmarked for retry.
func (s *Scanner) handleOne(ctx context.Context, rev reddit.WikiRevision) bool {
	revCtx, cancel := context.WithTimeout(ctx, s.revisionTimeout)
	defer cancel()
	revCtx = logging.ContextWithNewCorrelationID(revCtx)

	ev, err := s.decoder.Decode(revCtx, rev)
	if err != nil {
		metrics.RevisionsFailed.Inc()
		logging.Ctx(revCtx).Error().Err(err).
			Str("revision_id", rev.ID).
			Msg("Revision decode failed, will retry")
		return false
	}

	if ev == nil {
		metrics.RevisionsSkipped.WithLabelValues("unparseable").Inc()
		s.settle(revCtx, rev)
		return false
	}

	if err := s.router.Route(revCtx, ev); err != nil {
		metrics.RevisionsFailed.Inc()
		logging.Ctx(revCtx).Error().Err(err).
			Str("revision_id", rev.ID).
			Str("event_type", string(ev.Data.Type)).
			Msg("Event routing failed, will retry")
		return false
	}

	metrics.RevisionsProcessed.Inc()
	s.settle(revCtx, rev)
	return true
}

// settle records the revision in the ledger, keyed by its own
// timestamp, and advances the cutoff. Ledger write failures are logged
// but not fatal: the worst outcome is a redundant redecode next scan,
// which the handlers tolerate.
func (s *Scanner) settle(ctx context.Context, rev reddit.WikiRevision) {
	if err := s.ledger.MarkProcessed(ctx, rev.ID, rev.Date); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("revision_id", rev.ID).
			Msg("Failed to mark revision processed")
		return
	}
	if err := s.ledger.AdvanceCutoff(ctx, rev.Date); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("revision_id", rev.ID).
			Msg("Failed to advance revision cutoff")
	}
}
