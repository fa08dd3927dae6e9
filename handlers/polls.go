// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/youjianchi/quickPoll/metrics"
	"github.com/youjianchi/quickPoll/middleware"
	"github.com/youjianchi/quickPoll/models"
	"github.com/youjianchi/quickPoll/polls"
)

const MinQuestionLength = 3

type PollHandler struct {
	store   *polls.Store
	metrics *metrics.MetricService
}

func NewPollHandler(store *polls.Store, ms *metrics.MetricService) *PollHandler {
	return &PollHandler{store: store, metrics: ms}
}

// CreatePoll handles POST /api/polls (requires auth)
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := validateCreatePoll(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	poll, err := h.store.Create(r.Context(), req.Question, req.Options, &user.ID)
	var validationErr *polls.ValidationError
	if errors.As(err, &validationErr) {
		middleware.ErrorResponse(w, http.StatusBadRequest, validationErr.Message)
		return
	}
	if err != nil {
		slog.Error("failed to create poll", "error", err, "user_id", user.ID,
			"request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	h.metrics.PollCreated()
	slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options), "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.PollResponse{Poll: poll})
}

// GetPoll handles GET /api/polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	poll, found, err := h.store.FetchByID(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to fetch poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, fmt.Sprintf("Poll #%d not found.", pollID))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResponse{Poll: poll})
}

// Vote handles POST /api/polls/{id}/vote. Voting is anonymous and
// unlimited; the reply is the re-fetched poll including this vote.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "optionId must be a positive integer.")
		return
	}
	optionID, err := strconv.ParseInt(req.OptionID.String(), 10, 64)
	if err != nil || optionID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "optionId must be a positive integer.")
		return
	}

	applied, err := h.store.Vote(r.Context(), pollID, optionID)
	if err != nil {
		slog.Error("failed to apply vote", "error", err, "poll_id", pollID, "option_id", optionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.metrics.VoteRecorded(applied)
	if !applied {
		middleware.ErrorResponse(w, http.StatusNotFound, "Option not found for this poll.")
		return
	}

	poll, found, err := h.store.FetchByID(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to fetch poll after vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, fmt.Sprintf("Poll #%d not found.", pollID))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResponse{Poll: poll})
}

func parsePollID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	pollID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Poll ID must be a number.")
		return 0, false
	}
	return pollID, true
}

// validateCreatePoll applies the request-level rules; the store applies its
// own (trimmed, non-empty, at least two) regardless.
func validateCreatePoll(req models.CreatePollRequest) string {
	if utf8.RuneCountInString(strings.TrimSpace(req.Question)) < MinQuestionLength {
		return "Ask a question with at least 3 characters."
	}
	for _, opt := range req.Options {
		if strings.TrimSpace(opt) == "" {
			return "Option text cannot be empty."
		}
	}
	if len(req.Options) < polls.MinOptions {
		return "Provide at least two options."
	}
	return ""
}
