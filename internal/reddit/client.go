// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/goalrelay/internal/config"
	"github.com/tomtom215/goalrelay/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024 // 64KB

// maxRetries caps retry attempts for rate-limited or transient failures.
const maxRetries = 5

// API is the host-platform surface GoalRelay depends on.
//
// It is implemented by Client for production use and by in-memory fakes
// for testing. All methods accept a context for cancellation and return
// an error on HTTP failures, API errors, or JSON parse failures.
//
// Thread safety: all methods are safe for concurrent use.
type API interface {
	// CurrentSubreddit returns the subreddit this installation runs in.
	CurrentSubreddit(ctx context.Context) (*Subreddit, error)

	// GetPost fetches a submission by fullname.
	GetPost(ctx context.Context, postID string) (*Post, error)

	// SubmitCrosspost creates a crosspost of originPostID in the given
	// subreddit and returns the new post.
	SubmitCrosspost(ctx context.Context, subreddit, title, originPostID string) (*Post, error)

	// RemovePost removes a post as a moderator (not a hard delete).
	RemovePost(ctx context.Context, postID string, spam bool) error

	// ApprovePost re-approves a removed post.
	ApprovePost(ctx context.Context, postID string) error

	// DeletePost hard-deletes a post authored by the service account.
	DeletePost(ctx context.Context, postID string) error

	// UpdateWikiPage writes a new revision of a wiki page.
	UpdateWikiPage(ctx context.Context, subreddit, page, content, reason string) error

	// ListWikiRevisions lists revisions across all wiki pages of a
	// subreddit, newest first. after is the pagination cursor from the
	// previous call; the returned cursor is empty when exhausted.
	ListWikiRevisions(ctx context.Context, subreddit string, limit int, after string) ([]WikiRevision, string, error)

	// WikiRevisionContent fetches the body of one historical revision.
	WikiRevisionContent(ctx context.Context, subreddit, page, revisionID string) (string, error)

	// ListModActions lists the subreddit's moderation log, newest
	// first. before is the pagination cursor (a modlog entry fullname);
	// empty starts at the newest entry.
	ListModActions(ctx context.Context, subreddit string, limit int, before string) ([]ModAction, error)
}

// Client talks to the Reddit API on behalf of the service account.
//
// Resilience mechanisms, in order of application:
//   - rate limiter: sustained request rate per config (x/time)
//   - circuit breaker: opens after 3 consecutive failures (60s open)
//   - retry: exponential backoff on HTTP 429 and 5xx, max 5 attempts
type Client struct {
	baseURL        string
	token          string
	userAgent      string
	serviceAccount string
	subreddit      string

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

var _ API = (*Client)(nil)

// NewClient creates a Client from configuration.
func NewClient(cfg *config.Config) *Client {
	settings := gobreaker.Settings{
		Name:    "reddit-api",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.Reddit.BaseURL, "/"),
		token:          cfg.Reddit.Token,
		userAgent:      cfg.Reddit.UserAgent,
		serviceAccount: cfg.Reddit.ServiceAccount,
		subreddit:      cfg.Relay.Subreddit,
		httpClient:     &http.Client{Timeout: cfg.Reddit.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(cfg.Reddit.RateLimit), cfg.Reddit.RateBurst),
		breaker:        gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// ServiceAccount returns the username the client acts as.
func (c *Client) ServiceAccount() string {
	return c.serviceAccount
}

// do performs one API request with rate limiting, circuit breaking, and
// retry on 429/5xx. It returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return c.breaker.Execute(func() ([]byte, error) {
		var body []byte

		op := func() error {
			var err error
			body, err = c.doOnce(ctx, method, path, params)
			return err
		}

		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
			ctx,
		)
		if err := backoff.Retry(op, policy); err != nil {
			return nil, err
		}
		return body, nil
	})
}

// doOnce performs a single HTTP round trip. Retryable failures are
// returned as-is; terminal failures are wrapped in backoff.Permanent.
func (c *Client) doOnce(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	var reqBody io.Reader
	if method == http.MethodPost {
		reqBody = strings.NewReader(params.Encode())
	} else if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RedditAPIRequests.WithLabelValues(endpointLabel(path), "error").Inc()
		return nil, err // Network errors are retryable.
	}
	defer resp.Body.Close()
	metrics.RedditAPIRequests.WithLabelValues(endpointLabel(path), strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("reddit api %s %s: HTTP %d", method, path, resp.StatusCode)
	default:
		errBody := readBodyForError(resp.Body)
		return nil, backoff.Permanent(fmt.Errorf("reddit api %s %s: HTTP %d: %s", method, path, resp.StatusCode, errBody))
	}
}

// endpointLabel collapses subreddit and wiki page names out of a request
// path so metric label cardinality stays bounded.
func endpointLabel(path string) string {
	rest, ok := strings.CutPrefix(path, "/r/")
	if !ok {
		return path
	}
	_, tail, ok := strings.Cut(rest, "/")
	if !ok {
		return "/r/{subreddit}"
	}
	if page, isWiki := strings.CutPrefix(tail, "wiki/"); isWiki && page != "revisions" {
		return "/r/{subreddit}/wiki/{page}"
	}
	return "/r/{subreddit}/" + tail
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// subredditAbout mirrors the /r/<sub>/about response.
type subredditAbout struct {
	Data struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Subscribers int    `json:"subscribers"`
	} `json:"data"`
}

// CurrentSubreddit returns the subreddit this installation runs in.
func (c *Client) CurrentSubreddit(ctx context.Context) (*Subreddit, error) {
	body, err := c.do(ctx, http.MethodGet, "/r/"+c.subreddit+"/about", url.Values{"raw_json": {"1"}})
	if err != nil {
		return nil, err
	}

	var about subredditAbout
	if err := json.Unmarshal(body, &about); err != nil {
		return nil, fmt.Errorf("parse subreddit about: %w", err)
	}

	return &Subreddit{
		ID:          about.Data.Name,
		Name:        about.Data.DisplayName,
		Subscribers: about.Data.Subscribers,
	}, nil
}

// postListing mirrors the /api/info listing response.
type postListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Name           string  `json:"name"`
				Title          string  `json:"title"`
				Subreddit      string  `json:"subreddit"`
				AuthorFullname string  `json:"author_fullname"`
				CreatedUTC     float64 `json:"created_utc"`
				RemovedByCat   string  `json:"removed_by_category"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// ErrPostNotFound is returned when a post fullname resolves to nothing.
var ErrPostNotFound = fmt.Errorf("post not found")

// GetPost fetches a submission by fullname.
func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/info", url.Values{"id": {postID}, "raw_json": {"1"}})
	if err != nil {
		return nil, err
	}

	var listing postListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse post listing: %w", err)
	}
	if len(listing.Data.Children) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}

	d := listing.Data.Children[0].Data
	return &Post{
		ID:            d.Name,
		Title:         d.Title,
		SubredditName: d.Subreddit,
		AuthorID:      d.AuthorFullname,
		CreatedAt:     time.Unix(int64(d.CreatedUTC), 0).UTC(),
		Deleted:       d.RemovedByCat == "deleted",
	}, nil
}

// submitResponse mirrors the /api/submit response envelope.
type submitResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Name string `json:"name"`
		} `json:"data"`
	} `json:"json"`
}

// SubmitCrosspost creates a crosspost of originPostID in the given subreddit.
func (c *Client) SubmitCrosspost(ctx context.Context, subreddit, title, originPostID string) (*Post, error) {
	params := url.Values{
		"sr":                 {subreddit},
		"kind":               {"crosspost"},
		"title":              {title},
		"crosspost_fullname": {originPostID},
		"api_type":           {"json"},
	}

	body, err := c.do(ctx, http.MethodPost, "/api/submit", params)
	if err != nil {
		return nil, err
	}

	var result submitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse submit response: %w", err)
	}
	if len(result.JSON.Errors) > 0 {
		return nil, fmt.Errorf("submit crosspost rejected: %v", result.JSON.Errors[0])
	}

	return &Post{
		ID:            result.JSON.Data.Name,
		Title:         title,
		SubredditName: subreddit,
	}, nil
}

// RemovePost removes a post as a moderator.
func (c *Client) RemovePost(ctx context.Context, postID string, spam bool) error {
	_, err := c.do(ctx, http.MethodPost, "/api/remove", url.Values{
		"id":   {postID},
		"spam": {strconv.FormatBool(spam)},
	})
	return err
}

// ApprovePost re-approves a removed post.
func (c *Client) ApprovePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/approve", url.Values{"id": {postID}})
	return err
}

// DeletePost hard-deletes a post authored by the service account.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/del", url.Values{"id": {postID}})
	return err
}

// UpdateWikiPage writes a new revision of a wiki page.
func (c *Client) UpdateWikiPage(ctx context.Context, subreddit, page, content, reason string) error {
	_, err := c.do(ctx, http.MethodPost, "/r/"+subreddit+"/api/wiki/edit", url.Values{
		"page":    {strings.TrimPrefix(page, "/")},
		"content": {content},
		"reason":  {reason},
	})
	return err
}

// revisionListing mirrors the /r/<sub>/wiki/revisions listing response.
type revisionListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			ID        string  `json:"id"`
			Page      string  `json:"page"`
			Reason    string  `json:"reason"`
			Timestamp float64 `json:"timestamp"`
			Author    struct {
				Data struct {
					Name string `json:"name"`
				} `json:"data"`
			} `json:"author"`
		} `json:"children"`
	} `json:"data"`
}

// ListWikiRevisions lists revisions across all wiki pages, newest first.
func (c *Client) ListWikiRevisions(ctx context.Context, subreddit string, limit int, after string) ([]WikiRevision, string, error) {
	params := url.Values{
		"limit":    {strconv.Itoa(limit)},
		"raw_json": {"1"},
	}
	if after != "" {
		params.Set("after", after)
	}

	body, err := c.do(ctx, http.MethodGet, "/r/"+subreddit+"/wiki/revisions", params)
	if err != nil {
		return nil, "", err
	}

	var listing revisionListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, "", fmt.Errorf("parse revision listing: %w", err)
	}

	revisions := make([]WikiRevision, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		revisions = append(revisions, WikiRevision{
			ID:     child.ID,
			Page:   child.Page,
			Reason: child.Reason,
			Author: child.Author.Data.Name,
			Date:   time.Unix(int64(child.Timestamp), 0).UTC(),
		})
	}

	return revisions, listing.Data.After, nil
}

// wikiPage mirrors the /r/<sub>/wiki/<page> response.
type wikiPage struct {
	Data struct {
		ContentMD string `json:"content_md"`
	} `json:"data"`
}

// WikiRevisionContent fetches the body of one historical revision.
func (c *Client) WikiRevisionContent(ctx context.Context, subreddit, page, revisionID string) (string, error) {
	params := url.Values{
		"v":        {revisionID},
		"raw_json": {"1"},
	}

	body, err := c.do(ctx, http.MethodGet, "/r/"+subreddit+"/wiki/"+strings.TrimPrefix(page, "/"), params)
	if err != nil {
		return "", err
	}

	var result wikiPage
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse wiki page: %w", err)
	}

	return result.Data.ContentMD, nil
}

// modlogListing mirrors the /r/<sub>/about/log listing response.
type modlogListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID             string  `json:"id"`
				Action         string  `json:"action"`
				Mod            string  `json:"mod"`
				TargetFullname string  `json:"target_fullname"`
				TargetAuthor   string  `json:"target_author"`
				CreatedUTC     float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// ListModActions lists the subreddit's moderation log, newest first.
func (c *Client) ListModActions(ctx context.Context, subreddit string, limit int, before string) ([]ModAction, error) {
	params := url.Values{
		"limit":    {strconv.Itoa(limit)},
		"raw_json": {"1"},
	}
	if before != "" {
		params.Set("before", before)
	}

	body, err := c.do(ctx, http.MethodGet, "/r/"+subreddit+"/about/log", params)
	if err != nil {
		return nil, err
	}

	var listing modlogListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse modlog listing: %w", err)
	}

	actions := make([]ModAction, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		actions = append(actions, ModAction{
			ID:           d.ID,
			Action:       d.Action,
			Moderator:    d.Mod,
			TargetPostID: d.TargetFullname,
			TargetAuthor: d.TargetAuthor,
			CreatedAt:    time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return actions, nil
}
