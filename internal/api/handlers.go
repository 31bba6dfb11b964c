// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/goalrelay/internal/logging"
	"github.com/tomtom215/goalrelay/internal/store"
)

// Registrar registers a new goal post. Implemented by
// goalpost.Manager.
type Registrar interface {
	Register(ctx context.Context, postID string, goal int) error
}

// Handler holds the HTTP endpoint implementations.
type Handler struct {
	registrar Registrar
	goals     *store.GoalStore
}

// NewHandler creates a Handler.
func NewHandler(registrar Registrar, goals *store.GoalStore) *Handler {
	return &Handler{registrar: registrar, goals: goals}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// registerGoalRequest is the POST /api/v1/goals body.
type registerGoalRequest struct {
	PostID string `json:"postId"`
	Goal   int    `json:"goal"`
}

// RegisterGoal takes a goal post under management.
func (h *Handler) RegisterGoal(w http.ResponseWriter, req *http.Request) {
	var body registerGoalRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registrar.Register(req.Context(), body.PostID, body.Goal); err != nil {
		logging.Ctx(req.Context()).Error().Err(err).
			Str("post_id", body.PostID).
			Msg("Goal registration failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"postId": body.PostID})
}

// GetGoal returns the goal record for a post.
func (h *Handler) GetGoal(w http.ResponseWriter, req *http.Request) {
	postID := chi.URLParam(req, "postID")

	rec, err := h.goals.Get(req.Context(), postID)
	if errors.Is(err, store.ErrGoalNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		logging.Ctx(req.Context()).Error().Err(err).
			Str("post_id", postID).
			Msg("Goal lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
