// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDataValidate(t *testing.T) {
	tests := []struct {
		name  string
		data  EventData
		valid bool
	}{
		{
			name:  "valid create",
			data:  EventData{Type: TypePostCreate, PostID: "t3_abc123", SubGoal: 5000},
			valid: true,
		},
		{
			name:  "create with display name",
			data:  EventData{Type: TypePostCreate, PostID: "t3_abc123", SubGoal: 1, SubredditDisplayName: "GoalSub"},
			valid: true,
		},
		{
			name:  "create without goal",
			data:  EventData{Type: TypePostCreate, PostID: "t3_abc123"},
			valid: false,
		},
		{
			name:  "create with negative goal",
			data:  EventData{Type: TypePostCreate, PostID: "t3_abc123", SubGoal: -5},
			valid: false,
		},
		{
			name:  "create with bad post id",
			data:  EventData{Type: TypePostCreate, PostID: "abc123", SubGoal: 100},
			valid: false,
		},
		{
			name:  "valid action",
			data:  EventData{Type: TypePostAction, PostID: "t3_abc123", Action: ActionRemove, ActionTimestamp: 1700000000000},
			valid: true,
		},
		{
			name:  "action with unknown verb",
			data:  EventData{Type: TypePostAction, PostID: "t3_abc123", Action: "ban", ActionTimestamp: 1700000000000},
			valid: false,
		},
		{
			name:  "action without timestamp",
			data:  EventData{Type: TypePostAction, PostID: "t3_abc123", Action: ActionApprove},
			valid: false,
		},
		{
			name:  "unknown type tag",
			data:  EventData{Type: "PostEditEvent", PostID: "t3_abc123"},
			valid: false,
		},
		{
			name:  "empty",
			data:  EventData{},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.data.Validate())
		})
	}
}

func TestWikiEventValidate(t *testing.T) {
	valid := WikiEvent{
		RevisionID: "rev-1",
		Timestamp:  1700000000000,
		Data:       EventData{Type: TypePostCreate, PostID: "t3_abc123", SubGoal: 100},
	}
	assert.True(t, valid.Validate())

	noRev := valid
	noRev.RevisionID = ""
	assert.False(t, noRev.Validate())

	noTS := valid
	noTS.Timestamp = 0
	assert.False(t, noTS.Validate())

	badData := valid
	badData.Data.SubGoal = 0
	assert.False(t, badData.Validate())
}

func TestParseEventDataRoundTrip(t *testing.T) {
	orig := EventData{
		Type:                 TypePostCreate,
		PostID:               "t3_xyz789",
		SubGoal:              2500,
		SubredditDisplayName: "SmallSub",
	}
	raw, err := json.Marshal(&orig)
	require.NoError(t, err)

	parsed, ok := ParseEventData(raw)
	require.True(t, ok)
	assert.Equal(t, orig, parsed)
}

func TestParseEventDataOmitsUnusedArm(t *testing.T) {
	raw, err := json.Marshal(&EventData{Type: TypePostCreate, PostID: "t3_a", SubGoal: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "action")
	assert.NotContains(t, string(raw), "actionTimestamp")

	raw, err = json.Marshal(&EventData{Type: TypePostAction, PostID: "t3_a", Action: ActionDelete, ActionTimestamp: 5})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "subGoal")
}

func TestParseEventDataRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json",
		"{}",
		`{"type":"PostCreateEvent"}`,
		`{"type":"SomethingElse","postId":"t3_abc","subGoal":5}`,
		`[1,2,3]`,
	} {
		_, ok := ParseEventData([]byte(raw))
		assert.False(t, ok, "input %q should not parse", raw)
	}
}
