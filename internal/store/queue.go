// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Update queue keys. The primary key embeds the zero-padded due time
// so badger's lexicographic iteration yields entries in due order; the
// index key lets Cancel find an entry by post ID alone.
const (
	updateKeyPrefix    = "update:"
	updateIdxKeyPrefix = "updateidx:"
)

// UpdateQueue is a due-time-ordered queue of posts awaiting a display
// refresh. At most one pending entry per post: queueing again moves
// the entry to the new due time.
type UpdateQueue struct {
	db *badger.DB
}

// NewUpdateQueue creates an UpdateQueue over db.
func NewUpdateQueue(db *badger.DB) *UpdateQueue {
	return &UpdateQueue{db: db}
}

// QueuedUpdate is one pending refresh.
type QueuedUpdate struct {
	PostID string
	DueAt  time.Time
}

func updateKey(dueAt time.Time, postID string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", updateKeyPrefix, dueAt.UnixMilli(), postID))
}

// Queue schedules a refresh of postID at dueAt, replacing any pending
// entry for the same post.
func (q *UpdateQueue) Queue(ctx context.Context, postID string, dueAt time.Time) error {
	if postID == "" {
		return fmt.Errorf("queue update: empty post id")
	}
	key := updateKey(dueAt, postID)

	return q.db.Update(func(txn *badger.Txn) error {
		idxKey := []byte(updateIdxKeyPrefix + postID)
		if item, err := txn.Get(idxKey); err == nil {
			var old []byte
			if err := item.Value(func(val []byte) error {
				old = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return fmt.Errorf("read update index: %w", err)
			}
			if err := txn.Delete(old); err != nil {
				return fmt.Errorf("delete stale update entry: %w", err)
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get update index: %w", err)
		}

		if err := txn.Set(key, []byte(postID)); err != nil {
			return fmt.Errorf("set update entry: %w", err)
		}
		if err := txn.Set(idxKey, key); err != nil {
			return fmt.Errorf("set update index: %w", err)
		}
		return nil
	})
}

// Cancel removes any pending refresh for postID. Cancelling a post
// with no entry is a no-op.
func (q *UpdateQueue) Cancel(ctx context.Context, postID string) error {
	return q.db.Update(func(txn *badger.Txn) error {
		idxKey := []byte(updateIdxKeyPrefix + postID)
		item, err := txn.Get(idxKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get update index: %w", err)
		}

		var key []byte
		if err := item.Value(func(val []byte) error {
			key = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return fmt.Errorf("read update index: %w", err)
		}

		if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete update entry: %w", err)
		}
		if err := txn.Delete(idxKey); err != nil {
			return fmt.Errorf("delete update index: %w", err)
		}
		return nil
	})
}

// Due lists pending refreshes with DueAt <= now, oldest first, up to
// limit entries (limit <= 0 means no cap).
func (q *UpdateQueue) Due(ctx context.Context, now time.Time, limit int) ([]QueuedUpdate, error) {
	ceiling := fmt.Sprintf("%s%020d", updateKeyPrefix, now.UnixMilli()+1)
	var out []QueuedUpdate

	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(updateKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if key >= ceiling {
				break
			}

			rest := strings.TrimPrefix(key, updateKeyPrefix)
			dueStr, postID, ok := strings.Cut(rest, ":")
			if !ok {
				return fmt.Errorf("malformed update key %q", key)
			}
			dueMs, err := strconv.ParseInt(dueStr, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed update key %q: %w", key, err)
			}
			out = append(out, QueuedUpdate{PostID: postID, DueAt: time.UnixMilli(dueMs)})

			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
