// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalStorePutGet(t *testing.T) {
	s := NewGoalStore(testDB(t))
	ctx := context.Background()

	_, err := s.Get(ctx, "t3_abc")
	assert.ErrorIs(t, err, ErrGoalNotFound)

	rec := &GoalRecord{PostID: "t3_abc", Goal: 5000, RecentSubscriber: 4200}
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, "t3_abc")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.False(t, got.Completed())
}

func TestGoalStoreRejectsEmptyPostID(t *testing.T) {
	s := NewGoalStore(testDB(t))
	assert.Error(t, s.Put(context.Background(), &GoalRecord{Goal: 100}))
}

func TestGoalStoreCompletionIsSticky(t *testing.T) {
	s := NewGoalStore(testDB(t))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &GoalRecord{PostID: "t3_abc", Goal: 100}))

	first := time.UnixMilli(1700000000000)
	require.NoError(t, s.MarkCompleted(ctx, "t3_abc", first))
	require.NoError(t, s.MarkCompleted(ctx, "t3_abc", first.Add(time.Hour)))

	got, err := s.Get(ctx, "t3_abc")
	require.NoError(t, err)
	assert.True(t, got.Completed())
	assert.Equal(t, first.UnixMilli(), got.CompletedTime)
}

func TestGoalStoreMarkCompletedUnknownPost(t *testing.T) {
	s := NewGoalStore(testDB(t))
	err := s.MarkCompleted(context.Background(), "t3_nope", time.Now())
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestGoalStoreTracking(t *testing.T) {
	s := NewGoalStore(testDB(t))
	ctx := context.Background()

	tracked, err := s.IsTracked(ctx, "t3_abc")
	require.NoError(t, err)
	assert.False(t, tracked)

	require.NoError(t, s.Track(ctx, "t3_abc"))
	tracked, err = s.IsTracked(ctx, "t3_abc")
	require.NoError(t, err)
	assert.True(t, tracked)

	require.NoError(t, s.Untrack(ctx, "t3_abc"))
	tracked, err = s.IsTracked(ctx, "t3_abc")
	require.NoError(t, err)
	assert.False(t, tracked)

	// Untracking twice is a no-op.
	assert.NoError(t, s.Untrack(ctx, "t3_abc"))
}

func TestGoalStoreTrackedListing(t *testing.T) {
	s := NewGoalStore(testDB(t))
	ctx := context.Background()

	tracked, err := s.Tracked(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracked)

	require.NoError(t, s.Track(ctx, "t3_b"))
	require.NoError(t, s.Track(ctx, "t3_a"))

	tracked, err = s.Tracked(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t3_a", "t3_b"}, tracked)
}

func TestCursor(t *testing.T) {
	db := testDB(t)
	c := NewCursor(db, "modlog")
	ctx := context.Background()

	pos, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, pos)

	require.NoError(t, c.Set(ctx, "ModAction_123"))
	pos, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ModAction_123", pos)

	// Cursors with different names are independent.
	other := NewCursor(db, "other")
	pos, err = other.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, pos)
}
