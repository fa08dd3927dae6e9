// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the QuickPoll API.

	handler := router.NewRouter(store, provider, metricService, cfg)

# Endpoints

Operational:

	GET /health  - {"status":"ok"}
	GET /metrics - Prometheus exposition

Authentication:

	POST /auth/sign-up  - Register with email and password
	POST /auth/sign-in  - Exchange credentials for a session
	POST /auth/sign-out - Revoke a refresh token
	GET  /auth/session  - Current user (bearer token)

Polls:

	POST /api/polls           - Create poll (bearer token)
	GET  /api/polls/{id}      - Poll with options and counts
	POST /api/polls/{id}/vote - Increment one option

The whole mux is wrapped in CORS for the configured client origins.
*/
package router
