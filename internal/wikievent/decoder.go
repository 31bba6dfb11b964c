// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/reddit"
)

// decodeStrategy attempts one way of extracting an event from a
// revision. ok=false with a nil error means "not mine, try the next
// strategy". A non-nil error is an infrastructure failure (the
// revision should be retried later), never a parse failure.
type decodeStrategy interface {
	Name() string
	TryDecode(ctx context.Context, rev reddit.WikiRevision, page string) (EventData, bool, error)
}

// Decoder interprets wiki revisions on the hub's event pages. It
// understands both the legacy sentence format and the current JSON
// format, trying strategies in a fixed order: legacy sentence, then
// JSON in the revision reason, then JSON in the page body.
type Decoder struct {
	serviceAccount string
	hubSubreddit   string
	strategies     []decodeStrategy
}

// NewDecoder creates a Decoder for revisions on hubSubreddit's wiki.
// api is only used when an event payload has to be fetched from the
// page body.
func NewDecoder(api reddit.API, serviceAccount, hubSubreddit string) *Decoder {
	return &Decoder{
		serviceAccount: serviceAccount,
		hubSubreddit:   hubSubreddit,
		strategies: []decodeStrategy{
			legacyStrategy{},
			reasonJSONStrategy{},
			bodyJSONStrategy{api: api, subreddit: hubSubreddit},
		},
	}
}

// Decode extracts the event carried by rev.
//
// A (nil, nil) return means the revision carries no decodable event:
// it is off-namespace, malformed, or fails payload validation. Such
// revisions are permanent failures and must not be retried. A non-nil
// error means an infrastructure failure (for example the page body
// could not be fetched); the revision should be retried on a later
// scan.
func (d *Decoder) Decode(ctx context.Context, rev reddit.WikiRevision) (*WikiEvent, error) {
	page, err := NormalizeWikiPath(rev.Page)
	if err != nil {
		logging.Ctx(ctx).Debug().
			Str("revision_id", rev.ID).
			Str("page", rev.Page).
			Msg("Revision page not normalizable")
		return nil, nil
	}

	// Legacy pages live at the wiki root; everything else must be a
	// known event page under the service account namespace.
	if !isLegacyPage(page) {
		tag, ok := d.namespaceTag(page)
		if !ok {
			logging.Ctx(ctx).Debug().
				Str("revision_id", rev.ID).
				Str("page", page).
				Msg("Revision outside event namespace")
			return nil, nil
		}
		if !isEventTypeTag(tag) {
			logging.Ctx(ctx).Debug().
				Str("revision_id", rev.ID).
				Str("tag", tag).
				Msg("Unknown event type page")
			return nil, nil
		}
	}

	for _, s := range d.strategies {
		data, ok, err := s.TryDecode(ctx, rev, page)
		if err != nil {
			return nil, fmt.Errorf("decode revision %s via %s: %w", rev.ID, s.Name(), err)
		}
		if !ok {
			continue
		}
		ev := &WikiEvent{
			RevisionID: rev.ID,
			Timestamp:  rev.Date.UnixMilli(),
			Data:       data,
		}
		if !ev.Validate() {
			logging.Ctx(ctx).Warn().
				Str("revision_id", rev.ID).
				Str("strategy", s.Name()).
				Msg("Decoded event failed validation")
			return nil, nil
		}
		return ev, nil
	}

	logging.Ctx(ctx).Warn().
		Str("revision_id", rev.ID).
		Str("page", page).
		Msg("No strategy decoded revision")
	return nil, nil
}

// namespaceTag strips the service account namespace prefix from a
// normalized page path, leaving the event type segment. ok=false means
// the page does not belong to this installation's namespace.
func (d *Decoder) namespaceTag(page string) (string, bool) {
	prefix := "/" + strings.ToLower(d.serviceAccount) + "/"
	if !strings.HasPrefix(page, prefix) {
		return "", false
	}
	return strings.TrimPrefix(page, prefix), true
}

// isEventTypeTag reports whether the lowercased page segment names a
// known event type.
func isEventTypeTag(tag string) bool {
	for _, t := range KnownTypes {
		if tag == strings.ToLower(string(t)) {
			return true
		}
	}
	return false
}

type legacyStrategy struct{}

func (legacyStrategy) Name() string { return "legacy" }

func (legacyStrategy) TryDecode(_ context.Context, rev reddit.WikiRevision, page string) (EventData, bool, error) {
	if !isLegacyPage(page) {
		return EventData{}, false, nil
	}
	data, ok := decodeLegacy(page, rev.Reason, rev.Date.UnixMilli())
	return data, ok, nil
}

// reasonJSONStrategy handles the common case where the full JSON
// payload fit inside the revision reason at publish time.
type reasonJSONStrategy struct{}

func (reasonJSONStrategy) Name() string { return "reason-json" }

func (reasonJSONStrategy) TryDecode(_ context.Context, rev reddit.WikiRevision, page string) (EventData, bool, error) {
	if isLegacyPage(page) {
		return EventData{}, false, nil
	}
	data, ok := ParseEventData([]byte(rev.Reason))
	return data, ok, nil
}

// bodyJSONStrategy fetches the page content at the revision and parses
// it as JSON. This is the fallback for payloads too long for a
// revision reason.
type bodyJSONStrategy struct {
	api       reddit.API
	subreddit string
}

func (bodyJSONStrategy) Name() string { return "body-json" }

func (s bodyJSONStrategy) TryDecode(ctx context.Context, rev reddit.WikiRevision, page string) (EventData, bool, error) {
	if isLegacyPage(page) {
		return EventData{}, false, nil
	}
	body, err := s.api.WikiRevisionContent(ctx, s.subreddit, rev.Page, rev.ID)
	if err != nil {
		return EventData{}, false, fmt.Errorf("fetch page body: %w", err)
	}
	data, ok := ParseEventData([]byte(body))
	return data, ok, nil
}
