// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/goalrelay/internal/store"
)

type fakeRegistrar struct {
	postID string
	goal   int
	err    error
}

func (f *fakeRegistrar) Register(_ context.Context, postID string, goal int) error {
	if f.err != nil {
		return f.err
	}
	f.postID, f.goal = postID, goal
	return nil
}

func testRouter(t *testing.T, registrar *fakeRegistrar) (http.Handler, *store.GoalStore) {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goals := store.NewGoalStore(db)
	return newRouter(NewHandler(registrar, goals)), goals
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testRouter(t, &fakeRegistrar{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := testRouter(t, &fakeRegistrar{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRegisterGoal(t *testing.T) {
	registrar := &fakeRegistrar{}
	router, _ := testRouter(t, registrar)

	body := strings.NewReader(`{"postId":"t3_abc123","goal":5000}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/goals", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "t3_abc123", registrar.postID)
	assert.Equal(t, 5000, registrar.goal)
}

func TestRegisterGoalBadBody(t *testing.T) {
	router, _ := testRouter(t, &fakeRegistrar{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/goals", strings.NewReader("not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterGoalRejected(t *testing.T) {
	router, _ := testRouter(t, &fakeRegistrar{err: fmt.Errorf("goal must be positive")})

	body := strings.NewReader(`{"postId":"t3_abc123","goal":-1}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/goals", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "goal must be positive")
}

func TestGetGoal(t *testing.T) {
	router, goals := testRouter(t, &fakeRegistrar{})
	require.NoError(t, goals.Put(context.Background(), &store.GoalRecord{
		PostID: "t3_abc123", Goal: 5000, RecentSubscriber: 4200,
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/goals/t3_abc123", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got store.GoalRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5000, got.Goal)
	assert.Equal(t, 4200, got.RecentSubscriber)
}

func TestGetGoalNotFound(t *testing.T) {
	router, _ := testRouter(t, &fakeRegistrar{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/goals/t3_missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
