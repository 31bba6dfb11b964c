// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package wikievent

import (
	"context"
	"fmt"

	"github.com/tomtom215/goalrelay/internal/reddit"
)

// fakeAPI implements reddit.API with per-method hooks. Unset hooks
// fail loudly so a test only exercises the calls it expects.
type fakeAPI struct {
	currentSubreddit    func(ctx context.Context) (*reddit.Subreddit, error)
	getPost             func(ctx context.Context, postID string) (*reddit.Post, error)
	submitCrosspost     func(ctx context.Context, subreddit, title, originPostID string) (*reddit.Post, error)
	removePost          func(ctx context.Context, postID string, spam bool) error
	approvePost         func(ctx context.Context, postID string) error
	deletePost          func(ctx context.Context, postID string) error
	updateWikiPage      func(ctx context.Context, subreddit, page, content, reason string) error
	listWikiRevisions   func(ctx context.Context, subreddit string, limit int, after string) ([]reddit.WikiRevision, string, error)
	wikiRevisionContent func(ctx context.Context, subreddit, page, revisionID string) (string, error)
	listModActions      func(ctx context.Context, subreddit string, limit int, before string) ([]reddit.ModAction, error)
}

func (f *fakeAPI) CurrentSubreddit(ctx context.Context) (*reddit.Subreddit, error) {
	if f.currentSubreddit == nil {
		return nil, fmt.Errorf("unexpected CurrentSubreddit call")
	}
	return f.currentSubreddit(ctx)
}

func (f *fakeAPI) GetPost(ctx context.Context, postID string) (*reddit.Post, error) {
	if f.getPost == nil {
		return nil, fmt.Errorf("unexpected GetPost call")
	}
	return f.getPost(ctx, postID)
}

func (f *fakeAPI) SubmitCrosspost(ctx context.Context, subreddit, title, originPostID string) (*reddit.Post, error) {
	if f.submitCrosspost == nil {
		return nil, fmt.Errorf("unexpected SubmitCrosspost call")
	}
	return f.submitCrosspost(ctx, subreddit, title, originPostID)
}

func (f *fakeAPI) RemovePost(ctx context.Context, postID string, spam bool) error {
	if f.removePost == nil {
		return fmt.Errorf("unexpected RemovePost call")
	}
	return f.removePost(ctx, postID, spam)
}

func (f *fakeAPI) ApprovePost(ctx context.Context, postID string) error {
	if f.approvePost == nil {
		return fmt.Errorf("unexpected ApprovePost call")
	}
	return f.approvePost(ctx, postID)
}

func (f *fakeAPI) DeletePost(ctx context.Context, postID string) error {
	if f.deletePost == nil {
		return fmt.Errorf("unexpected DeletePost call")
	}
	return f.deletePost(ctx, postID)
}

func (f *fakeAPI) UpdateWikiPage(ctx context.Context, subreddit, page, content, reason string) error {
	if f.updateWikiPage == nil {
		return fmt.Errorf("unexpected UpdateWikiPage call")
	}
	return f.updateWikiPage(ctx, subreddit, page, content, reason)
}

func (f *fakeAPI) ListWikiRevisions(ctx context.Context, subreddit string, limit int, after string) ([]reddit.WikiRevision, string, error) {
	if f.listWikiRevisions == nil {
		return nil, "", fmt.Errorf("unexpected ListWikiRevisions call")
	}
	return f.listWikiRevisions(ctx, subreddit, limit, after)
}

func (f *fakeAPI) WikiRevisionContent(ctx context.Context, subreddit, page, revisionID string) (string, error) {
	if f.wikiRevisionContent == nil {
		return "", fmt.Errorf("unexpected WikiRevisionContent call")
	}
	return f.wikiRevisionContent(ctx, subreddit, page, revisionID)
}

func (f *fakeAPI) ListModActions(ctx context.Context, subreddit string, limit int, before string) ([]reddit.ModAction, error) {
	if f.listModActions == nil {
		return nil, fmt.Errorf("unexpected ListModActions call")
	}
	return f.listModActions(ctx, subreddit, limit, before)
}
