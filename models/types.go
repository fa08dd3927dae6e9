package models

import (
	"encoding/json"
	"time"
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// OptionID accepts either a JSON number or a numeric string.
type VoteRequest struct {
	OptionID json.Number `json:"optionId"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Response types

type PollResponse struct {
	Poll Poll `json:"poll"`
}

type UserResponse struct {
	User User `json:"user"`
}

type SignInResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
	User         User   `json:"user"`
}

// Domain types

// Poll is a normalized snapshot: options are always ascending by ID.
type Poll struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *string   `json:"-"`
	Options   []Option  `json:"options"`
}

type Option struct {
	ID     int64  `json:"id"`
	PollID int64  `json:"-"`
	Text   string `json:"text"`
	Votes  int64  `json:"votes"`
}

// User is the projection of an identity provider account exposed by the API
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated identity provider session
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	User         User
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
