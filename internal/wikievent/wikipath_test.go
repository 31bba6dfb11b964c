// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWikiPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "goalbot/PostCreateEvent", "/goalbot/postcreateevent"},
		{"leading slash", "/goalbot/post", "/goalbot/post"},
		{"trailing slash", "goalbot/post/", "/goalbot/post"},
		{"duplicate slashes", "goalbot//post", "/goalbot/post"},
		{"many slashes", "//goalbot///post//", "/goalbot/post"},
		{"wiki prefix", "wiki/goalbot/post", "/goalbot/post"},
		{"repeated wiki prefix", "wiki/wiki/goalbot/post", "/goalbot/post"},
		{"wiki prefix after slash", "/wiki/goalbot/post", "/goalbot/post"},
		{"surrounding whitespace", "  goalbot/post  ", "/goalbot/post"},
		{"uppercase", "GoalBot/Remove", "/goalbot/remove"},
		{"bare wiki is a page", "wiki", "/wiki"},
		{"wiki with trailing slash is a page", "wiki/", "/wiki"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeWikiPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Idempotence: a normalized path survives normalization.
			again, err := NormalizeWikiPath(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestNormalizeWikiPathEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/", "//", " / "} {
		_, err := NormalizeWikiPath(in)
		assert.ErrorIs(t, err, ErrEmptyWikiPath, "input %q", in)
	}
}

func TestNormalizeWikiPathWithRevision(t *testing.T) {
	got, err := NormalizeWikiPathWithRevision("GoalBot/post", "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "/goalbot/post?v=abc-123&raw_json=1&", got)
}

func TestIsValidRevisionReason(t *testing.T) {
	assert.True(t, IsValidRevisionReason(""))
	assert.True(t, IsValidRevisionReason("PostCreateEvent"))
	assert.True(t, IsValidRevisionReason(`{"type":"PostActionEvent","postId":"t3_abc"}`))
	assert.True(t, IsValidRevisionReason(strings.Repeat("x", 256)))

	assert.False(t, IsValidRevisionReason(strings.Repeat("x", 257)))
	assert.False(t, IsValidRevisionReason("line\nbreak"))
	assert.False(t, IsValidRevisionReason("tab\there"))
	assert.False(t, IsValidRevisionReason("emoji \U0001F389"))
	assert.False(t, IsValidRevisionReason("café"))
}
