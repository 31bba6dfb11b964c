// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	goalKeyPrefix    = "goal:"
	trackedKeyPrefix = "tracked:"
)

// ErrGoalNotFound is returned when no goal record exists for a post.
var ErrGoalNotFound = errors.New("goal record not found")

// GoalRecord is the per-post subscriber goal state shown in the post
// body and checked for completion on each update pass.
type GoalRecord struct {
	PostID           string `json:"postId"`
	Goal             int    `json:"goal"`
	RecentSubscriber int    `json:"recentSubscriberCount"`
	CompletedTime    int64  `json:"completedTime,omitempty"` // ms since epoch, 0 = not completed
}

// Completed reports whether the goal has been reached and recorded.
func (g *GoalRecord) Completed() bool {
	return g.CompletedTime > 0
}

// GoalStore persists goal records and the set of posts being tracked
// for display refresh.
type GoalStore struct {
	db *badger.DB
}

// NewGoalStore creates a GoalStore over db.
func NewGoalStore(db *badger.DB) *GoalStore {
	return &GoalStore{db: db}
}

// Put writes (or overwrites) a goal record.
func (s *GoalStore) Put(ctx context.Context, rec *GoalRecord) error {
	if rec.PostID == "" {
		return fmt.Errorf("goal record has no post id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal goal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(goalKeyPrefix+rec.PostID), data); err != nil {
			return fmt.Errorf("set goal record: %w", err)
		}
		return nil
	})
}

// Get returns the goal record for postID, or ErrGoalNotFound.
func (s *GoalStore) Get(ctx context.Context, postID string) (*GoalRecord, error) {
	var rec GoalRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(goalKeyPrefix + postID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrGoalNotFound
		}
		if err != nil {
			return fmt.Errorf("get goal record: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkCompleted records the goal as reached at completedAt. Completion
// is sticky: a second call keeps the original time.
func (s *GoalStore) MarkCompleted(ctx context.Context, postID string, completedAt time.Time) error {
	rec, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if rec.Completed() {
		return nil
	}
	rec.CompletedTime = completedAt.UnixMilli()
	return s.Put(ctx, rec)
}

// Track adds postID to the tracked set.
func (s *GoalStore) Track(ctx context.Context, postID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(trackedKeyPrefix+postID), []byte{1}); err != nil {
			return fmt.Errorf("set tracked entry: %w", err)
		}
		return nil
	})
}

// Untrack removes postID from the tracked set.
func (s *GoalStore) Untrack(ctx context.Context, postID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(trackedKeyPrefix + postID))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete tracked entry: %w", err)
		}
		return nil
	})
}

// Tracked lists all post IDs in the tracked set.
func (s *GoalStore) Tracked(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(trackedKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			out = append(out, strings.TrimPrefix(key, trackedKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsTracked reports whether postID is in the tracked set.
func (s *GoalStore) IsTracked(ctx context.Context, postID string) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(trackedKeyPrefix + postID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get tracked entry: %w", err)
		}
		found = true
		return nil
	})
	return found, err
}
