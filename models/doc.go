// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreatePollRequest: question, options
  - VoteRequest: optionId (number or numeric string)
  - CredentialsRequest: email, password
  - SignOutRequest: refreshToken

# Response Types

  - PollResponse: {"poll": ...}
  - UserResponse: {"user": ...}
  - SignInResponse: accessToken, refreshToken, expiresAt, user
  - ErrorResponse: {"error": "..."}

# Domain Types

  - Poll: id, question, created_at and options ascending by id
  - Option: id, text, votes
  - User: id, email
  - Session: tokens issued by the identity provider

Poll.CreatedBy and Option.PollID are internal and never serialized.
*/
package models
