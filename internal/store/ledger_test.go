// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLedgerMarkAndCheck(t *testing.T) {
	l := NewLedger(testDB(t))
	ctx := context.Background()

	processed, err := l.IsProcessed(ctx, "rev-1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, l.MarkProcessed(ctx, "rev-1", time.UnixMilli(1700000000000)))

	processed, err = l.IsProcessed(ctx, "rev-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestLedgerGetProcessedStatus(t *testing.T) {
	l := NewLedger(testDB(t))
	ctx := context.Background()

	markedAt := time.UnixMilli(1700000000000)
	require.NoError(t, l.MarkProcessed(ctx, "rev-1", markedAt))
	require.NoError(t, l.MarkProcessed(ctx, "rev-3", markedAt.Add(time.Minute)))

	status, err := l.GetProcessedStatus(ctx, []string{"rev-1", "rev-2", "rev-3"})
	require.NoError(t, err)
	require.Len(t, status, 3)

	require.NotNil(t, status["rev-1"])
	assert.Equal(t, markedAt.UnixMilli(), status["rev-1"].UnixMilli())
	assert.Nil(t, status["rev-2"])
	require.NotNil(t, status["rev-3"])
}

func TestLedgerGetProcessedStatusCountInvariant(t *testing.T) {
	l := NewLedger(testDB(t))

	_, err := l.GetProcessedStatus(context.Background(), []string{"rev-1", "rev-1"})
	assert.ErrorIs(t, err, ErrStatusCountMismatch)
}

func TestLedgerCutoffDefaultsToEpoch(t *testing.T) {
	l := NewLedger(testDB(t))

	cutoff, err := l.Cutoff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), cutoff.UnixMilli())
}

func TestLedgerAdvanceCutoff(t *testing.T) {
	l := NewLedger(testDB(t))
	ctx := context.Background()

	require.NoError(t, l.AdvanceCutoff(ctx, time.UnixMilli(1000)))
	cutoff, err := l.Cutoff(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cutoff.UnixMilli())

	// Moving backwards is ignored.
	require.NoError(t, l.AdvanceCutoff(ctx, time.UnixMilli(500)))
	cutoff, err = l.Cutoff(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cutoff.UnixMilli())

	require.NoError(t, l.AdvanceCutoff(ctx, time.UnixMilli(2000)))
	cutoff, err = l.Cutoff(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), cutoff.UnixMilli())
}
