// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the QuickPoll API server.

QuickPoll lets signed-in users create single-choice polls that anyone can
vote on anonymously; clients poll for updated counts.

# Starting the Server

	DATABASE_TYPE=sqlite SUPABASE_URL=... SUPABASE_ANON_KEY=... \
	SUPABASE_SERVICE_ROLE_KEY=... go run .

Or with flags:

	go run . -p 4000 -t postgres -d "postgres://..."

A .env file in the working directory is loaded when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string (optional for sqlite)
  - SUPABASE_URL (--supabase-url): identity provider base URL
  - SUPABASE_ANON_KEY (--anon-key)
  - SUPABASE_SERVICE_ROLE_KEY (--service-key)

Optional settings:

  - PORT (-p): server port (default: 4000)
  - DATABASE_TYPE (-t): sqlite, postgres or mysql (default: sqlite)
  - CLIENT_ORIGIN (--client-origin): comma-separated CORS origins
  - SUPABASE_JWT_SECRET (--jwt-secret): verify access tokens locally
  - LOG_LEVEL, LOG_FORMAT: slog level and text/json output

# Architecture

  - polls: the poll store (create, fetch, atomic vote)
  - handlers, router, middleware: HTTP surface
  - auth: identity provider client and token verification
  - db: dialects, connection and schema
  - metrics: Prometheus counters and request histogram
  - watcher, client, cmd/quickpoll: live-poll client and CLI
*/
package main
