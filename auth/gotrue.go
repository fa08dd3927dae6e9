// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

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

type GoTrueConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	// Optional; when set bearer tokens are verified without a network call
	JWTSecret  string
	HTTPClient *http.Client
}

// GoTrueClient talks to a Supabase-compatible auth server (/auth/v1).
// Construct one per process and share it.
type GoTrueClient struct {
	baseURL    string
	anonKey    string
	serviceKey string
	verifier   *Verifier
	http       *http.Client
}

func NewGoTrueClient(cfg GoTrueConfig) *GoTrueClient {
	c := &GoTrueClient{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceRoleKey,
		http:       cfg.HTTPClient,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.JWTSecret != "" {
		c.verifier = NewVerifier(cfg.JWTSecret)
	}
	return c
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    int64       `json:"expires_at"`
	ExpiresIn    int64       `json:"expires_in"`
	User         *gotrueUser `json:"user"`
}

// SignUp registers a password account. Depending on the project's email
// confirmation setting the reply is either the bare user or a session.
func (c *GoTrueClient) SignUp(ctx context.Context, email, password string) (models.User, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodPost, "/signup", c.anonKey, "", map[string]string{
		"email":    email,
		"password": password,
	}, &raw)
	if err != nil {
		return models.User{}, err
	}

	var session gotrueSession
	if err := json.Unmarshal(raw, &session); err == nil && session.User != nil && session.User.ID != "" {
		return models.User{ID: session.User.ID, Email: session.User.Email}, nil
	}
	var user gotrueUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode sign-up reply: %w", err)
	}
	return models.User{ID: user.ID, Email: user.Email}, nil
}

func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	var session gotrueSession
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey, "", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return models.Session{}, err
	}
	if session.AccessToken == "" || session.User == nil {
		return models.Session{}, &UpstreamError{Status: http.StatusUnauthorized, Message: "Invalid email or password."}
	}

	expiresAt := session.ExpiresAt
	if expiresAt == 0 && session.ExpiresIn > 0 {
		expiresAt = time.Now().Unix() + session.ExpiresIn
	}

	return models.Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         models.User{ID: session.User.ID, Email: session.User.Email},
	}, nil
}

// SignOut revokes the session that token belongs to
func (c *GoTrueClient) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", c.serviceKey, token, nil, nil)
}

// GetUser validates an access token and returns its user
func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (models.User, error) {
	if accessToken == "" {
		return models.User{}, ErrMissingToken
	}
	if c.verifier != nil {
		return c.verifier.Verify(accessToken)
	}

	var user gotrueUser
	err := c.do(ctx, http.MethodGet, "/user", c.serviceKey, accessToken, nil, &user)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) &&
			(upstream.Status == http.StatusUnauthorized || upstream.Status == http.StatusForbidden) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	if user.ID == "" {
		return models.User{}, ErrUnauthorized
	}
	return models.User{ID: user.ID, Email: user.Email}, nil
}

func (c *GoTrueClient) do(ctx context.Context, method, path, apiKey, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", apiKey)
	if bearer == "" {
		bearer = apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read identity provider reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Message: errorMessage(payload, resp.StatusCode)}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode identity provider reply: %w", err)
	}
	return nil
}

// errorMessage picks the human readable field out of the several error
// shapes GoTrue versions have used.
func errorMessage(payload []byte, status int) string {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}
