// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const mirrorKeyPrefix = "mirror:"

// CrosspostRegistry maps origin post IDs to their mirror posts on the
// hub. Duplicate create events for the same origin hit the existing
// mapping and become no-ops; a repeated RecordMapping is
// last-write-wins.
type CrosspostRegistry struct {
	db *badger.DB
}

// NewCrosspostRegistry creates a CrosspostRegistry over db.
func NewCrosspostRegistry(db *badger.DB) *CrosspostRegistry {
	return &CrosspostRegistry{db: db}
}

// RecordMapping stores originPostID -> mirrorPostID.
func (r *CrosspostRegistry) RecordMapping(ctx context.Context, originPostID, mirrorPostID string) error {
	if originPostID == "" || mirrorPostID == "" {
		return fmt.Errorf("record mapping: empty post id (origin=%q mirror=%q)", originPostID, mirrorPostID)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(mirrorKeyPrefix+originPostID), []byte(mirrorPostID)); err != nil {
			return fmt.Errorf("set mirror mapping: %w", err)
		}
		return nil
	})
}

// MirrorFor returns the mirror post for origin, or ok=false when no
// mapping exists.
func (r *CrosspostRegistry) MirrorFor(ctx context.Context, originPostID string) (string, bool, error) {
	var mirror string
	var found bool

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(mirrorKeyPrefix + originPostID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get mirror mapping: %w", err)
		}
		found = true
		return item.Value(func(val []byte) error {
			mirror = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, err
	}
	return mirror, found, nil
}

// HasMirror reports whether origin already has a mirror post.
func (r *CrosspostRegistry) HasMirror(ctx context.Context, originPostID string) (bool, error) {
	_, found, err := r.MirrorFor(ctx, originPostID)
	return found, err
}
