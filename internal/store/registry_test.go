// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRecordAndResolve(t *testing.T) {
	r := NewCrosspostRegistry(testDB(t))
	ctx := context.Background()

	_, found, err := r.MirrorFor(ctx, "t3_origin")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, r.RecordMapping(ctx, "t3_origin", "t3_mirror"))

	mirror, found, err := r.MirrorFor(ctx, "t3_origin")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "t3_mirror", mirror)

	has, err := r.HasMirror(ctx, "t3_origin")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRegistryLastWriteWins(t *testing.T) {
	r := NewCrosspostRegistry(testDB(t))
	ctx := context.Background()

	require.NoError(t, r.RecordMapping(ctx, "t3_origin", "t3_first"))
	require.NoError(t, r.RecordMapping(ctx, "t3_origin", "t3_second"))

	mirror, found, err := r.MirrorFor(ctx, "t3_origin")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "t3_second", mirror)
}

func TestRegistryRejectsEmptyIDs(t *testing.T) {
	r := NewCrosspostRegistry(testDB(t))
	ctx := context.Background()

	assert.Error(t, r.RecordMapping(ctx, "", "t3_mirror"))
	assert.Error(t, r.RecordMapping(ctx, "t3_origin", ""))
}
