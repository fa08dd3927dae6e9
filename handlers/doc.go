// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the QuickPoll API.

# Handler Types

  - PollHandler: create, read and vote on polls (backed by *polls.Store)
  - AuthHandler: sign-up, sign-in, sign-out and session lookup, delegated
    to an auth.Provider

# Polls

	POST /api/polls           → CreatePoll (requires a bearer token)
	GET  /api/polls/{id}      → GetPoll
	POST /api/polls/{id}/vote → Vote (anonymous, unlimited)

Every reply carrying a poll has the shape {"poll": {...}} with options
ordered by ascending id. Errors are {"error": "message"}.

# Validation

CreatePoll rejects a question shorter than three characters, any blank
option and fewer than two options before the store is touched. Vote
requires a positive integer optionId; an option that does not belong to
the poll is a 404.
*/
package handlers
