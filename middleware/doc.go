// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /api/polls/{id}", middleware.WithLogging(handler))

Every request gets an X-Request-ID (kept from the caller when present).
Start and completion are logged with slog, including status and
duration_ms.

# Metrics

WithMetrics observes the request duration under the route pattern.

# Authentication

RequireAuth reads "Authorization: Bearer <token>", resolves the user through
an auth.Provider and stores it in the context:

	user, ok := middleware.UserFromContext(r.Context())

# CORS

CORS reflects the Origin header only for configured origins and answers
preflight requests with 204.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
*/
package middleware
