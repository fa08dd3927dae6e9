// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/youjianchi/quickPoll/auth"
	"github.com/youjianchi/quickPoll/cliparse"
	"github.com/youjianchi/quickPoll/handlers"
	"github.com/youjianchi/quickPoll/metrics"
	"github.com/youjianchi/quickPoll/middleware"
	"github.com/youjianchi/quickPoll/polls"
)

func NewRouter(store *polls.Store, provider auth.Provider, ms *metrics.MetricService, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(store, ms)
	authHandler := handlers.NewAuthHandler(provider)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(ms, pattern, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", ms.Handler())

	// Authentication (delegated to the identity provider)
	handle("POST /auth/sign-up", authHandler.SignUp)
	handle("POST /auth/sign-in", authHandler.SignIn)
	handle("POST /auth/sign-out", authHandler.SignOut)
	handle("GET /auth/session", middleware.RequireAuth(provider, authHandler.Session))

	// Polls
	handle("POST /api/polls", middleware.RequireAuth(provider, pollHandler.CreatePoll))
	handle("GET /api/polls/{id}", pollHandler.GetPoll)
	handle("POST /api/polls/{id}/vote", pollHandler.Vote)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickpoll API v1"))
	})

	return middleware.CORS(cfg.AllowedOrigins, mux)
}
