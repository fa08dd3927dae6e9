// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/youjianchi/quickPoll/auth"
	"github.com/youjianchi/quickPoll/middleware"
	"github.com/youjianchi/quickPoll/models"
)

const MinPasswordLength = 6

type AuthHandler struct {
	provider auth.Provider
}

func NewAuthHandler(provider auth.Provider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

// SignUp handles POST /auth/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := parseCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.provider.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.upstreamFailure(w, r, err, http.StatusBadRequest, "sign-up")
		return
	}

	slog.Info("user signed up", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusCreated, models.UserResponse{User: user})
}

// SignIn handles POST /auth/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := parseCredentials(w, r)
	if !ok {
		return
	}

	session, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.upstreamFailure(w, r, err, http.StatusUnauthorized, "sign-in")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SignInResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
		User:         session.User,
	})
}

// SignOut handles POST /auth/sign-out
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	var req models.SignOutRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Refresh token is required.")
		return
	}

	if err := h.provider.SignOut(r.Context(), req.RefreshToken); err != nil {
		h.upstreamFailure(w, r, err, http.StatusBadRequest, "sign-out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /auth/session (requires auth)
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required.")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{User: user})
}

// upstreamFailure surfaces the provider's message with status; anything
// that is not a provider reply is an internal error.
func (h *AuthHandler) upstreamFailure(w http.ResponseWriter, r *http.Request, err error, status int, op string) {
	var upstream *auth.UpstreamError
	if errors.As(err, &upstream) {
		middleware.ErrorResponse(w, status, upstream.Message)
		return
	}
	slog.Error("identity provider call failed", "op", op, "error", err,
		"request_id", middleware.RequestID(r.Context()))
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
}

func parseCredentials(w http.ResponseWriter, r *http.Request) (models.CredentialsRequest, bool) {
	var req models.CredentialsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return req, false
	}

	req.Email = strings.TrimSpace(req.Email)
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid email address.")
		return req, false
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Password must be at least 6 characters.")
		return req, false
	}
	return req, true
}
