// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package trigger

import (
	"context"
	"fmt"

	"github.com/tomtom215/goalrelay/internal/reddit"
)

// fakeAPI implements reddit.API with per-method hooks; unset hooks
// fail loudly.
type fakeAPI struct {
	getPost        func(ctx context.Context, postID string) (*reddit.Post, error)
	listModActions func(ctx context.Context, subreddit string, limit int, before string) ([]reddit.ModAction, error)
}

func (f *fakeAPI) CurrentSubreddit(context.Context) (*reddit.Subreddit, error) {
	return nil, fmt.Errorf("unexpected CurrentSubreddit call")
}

func (f *fakeAPI) GetPost(ctx context.Context, postID string) (*reddit.Post, error) {
	if f.getPost == nil {
		return nil, fmt.Errorf("unexpected GetPost call")
	}
	return f.getPost(ctx, postID)
}

func (f *fakeAPI) SubmitCrosspost(context.Context, string, string, string) (*reddit.Post, error) {
	return nil, fmt.Errorf("unexpected SubmitCrosspost call")
}

func (f *fakeAPI) RemovePost(context.Context, string, bool) error {
	return fmt.Errorf("unexpected RemovePost call")
}

func (f *fakeAPI) ApprovePost(context.Context, string) error {
	return fmt.Errorf("unexpected ApprovePost call")
}

func (f *fakeAPI) DeletePost(context.Context, string) error {
	return fmt.Errorf("unexpected DeletePost call")
}

func (f *fakeAPI) UpdateWikiPage(context.Context, string, string, string, string) error {
	return fmt.Errorf("unexpected UpdateWikiPage call")
}

func (f *fakeAPI) ListWikiRevisions(context.Context, string, int, string) ([]reddit.WikiRevision, string, error) {
	return nil, "", fmt.Errorf("unexpected ListWikiRevisions call")
}

func (f *fakeAPI) WikiRevisionContent(context.Context, string, string, string) (string, error) {
	return "", fmt.Errorf("unexpected WikiRevisionContent call")
}

func (f *fakeAPI) ListModActions(ctx context.Context, subreddit string, limit int, before string) ([]reddit.ModAction, error) {
	if f.listModActions == nil {
		return nil, fmt.Errorf("unexpected ListModActions call")
	}
	return f.listModActions(ctx, subreddit, limit, before)
}
