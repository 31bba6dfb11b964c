// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyWikiPath is returned when a path normalizes to nothing.
var ErrEmptyWikiPath = errors.New("wiki path is empty after normalization")

var (
	multiSlashPattern = regexp.MustCompile(`/{2,}`)
	wikiPrefixPattern = regexp.MustCompile(`^(wiki/)+`)
)

// NormalizeWikiPath canonicalizes a wiki page path: trims whitespace,
// collapses duplicate slashes, strips leading/trailing slashes, strips
// any number of leading "wiki/" segments, lower-cases, and prepends
// exactly one leading slash. Normalization is idempotent.
//
// Leading "wiki/" segments are stripped because a top-level page named
// "wiki" would otherwise be indistinguishable from the wiki root in a
// user-entered path.
func NormalizeWikiPath(path string) (string, error) {
	path = strings.ToLower(strings.TrimSpace(path))
	path = multiSlashPattern.ReplaceAllString(path, "/")

	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	path = wikiPrefixPattern.ReplaceAllString(path, "")

	if path == "" {
		return "", ErrEmptyWikiPath
	}
	return "/" + path, nil
}

// NormalizeWikiPathWithRevision normalizes a path and appends the query
// form Reddit expects when addressing one historical revision.
func NormalizeWikiPathWithRevision(path, revisionID string) (string, error) {
	normalized, err := NormalizeWikiPath(path)
	if err != nil {
		return "", err
	}
	return normalized + "?v=" + revisionID + "&raw_json=1&", nil
}

// maxRevisionReasonBytes is Reddit's limit on revision reasons.
const maxRevisionReasonBytes = 256

// IsValidRevisionReason reports whether text can be used as a wiki
// revision reason: printable ASCII only and at most 256 bytes. This
// mirrors the VPrintable validator from the legacy Reddit codebase.
func IsValidRevisionReason(text string) bool {
	if len(text) > maxRevisionReasonBytes {
		return false
	}
	for _, ch := range text {
		if ch < 0x20 || ch > 0x7E {
			return false
		}
	}
	return true
}
