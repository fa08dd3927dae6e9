// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/youjianchi/quickPoll/models"
)

const DefaultBaseURL = "http://localhost:4000"

// ErrNotFound is returned (wrapped in an *APIError) for 404 replies
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx reply. Message is the server's {"error"} text, or
// the status text when the body carried none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client calls the QuickPoll HTTP API. AccessToken, when set, is sent as a
// bearer token on every request.
type Client struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (models.User, error) {
	var resp models.UserResponse
	err := c.do(ctx, http.MethodPost, "/auth/sign-up", models.CredentialsRequest{Email: email, Password: password}, &resp)
	return resp.User, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (models.SignInResponse, error) {
	var resp models.SignInResponse
	err := c.do(ctx, http.MethodPost, "/auth/sign-in", models.CredentialsRequest{Email: email, Password: password}, &resp)
	return resp, err
}

// SignOut revokes refreshToken. An empty token is a no-op.
func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/auth/sign-out", models.SignOutRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) Session(ctx context.Context) (models.User, error) {
	var resp models.UserResponse
	err := c.do(ctx, http.MethodGet, "/auth/session", nil, &resp)
	return resp.User, err
}

func (c *Client) CreatePoll(ctx context.Context, question string, options []string) (models.Poll, error) {
	var resp models.PollResponse
	err := c.do(ctx, http.MethodPost, "/api/polls", models.CreatePollRequest{Question: question, Options: options}, &resp)
	return resp.Poll, err
}

func (c *Client) FetchPoll(ctx context.Context, pollID int64) (models.Poll, error) {
	var resp models.PollResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/polls/%d", pollID), nil, &resp)
	return resp.Poll, err
}

// Vote adds one vote and returns the poll as it stands afterwards
func (c *Client) Vote(ctx context.Context, pollID, optionID int64) (models.Poll, error) {
	var resp models.PollResponse
	body := map[string]int64{"optionId": optionID}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", pollID), body, &resp)
	return resp.Poll, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp, payload)}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response, payload []byte) string {
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var body models.ErrorResponse
		if json.Unmarshal(payload, &body) == nil && body.Error != "" {
			return body.Error
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
