// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"Bearer  spaced ", "spaced"},
		{"Basic abc", ""},
		{"", ""},
		{"bearer abc", ""},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), "header %q", tt.header)
	}
}

func TestVerifier(t *testing.T) {
	v := NewVerifier(testSecret)
	now := time.Now()

	valid := signToken(t, testSecret, Claims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	user, err := v.Verify(valid)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)

	tests := map[string]string{
		"expired": signToken(t, testSecret, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}}),
		"wrong secret": signToken(t, "another-secret", Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1",
		}}),
		"anon key without subject": signToken(t, testSecret, Claims{Role: "anon"}),
		"garbage":                  "not-a-jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestVerifier_RejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier(testSecret).Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// fakeGoTrue emulates the subset of the GoTrue API the client uses
func fakeGoTrue(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`))
			return
		}
		w.Write([]byte(`{"id":"new-user","email":"` + body["email"] + `"}`))
	})

	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","expires_at":1700000000,
			"user":{"id":"user-1","email":"` + body["email"] + `"}}`))
	})

	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "service", r.Header.Get("apikey"))
		switch BearerToken(r) {
		case "access-1":
			w.Write([]byte(`{"id":"user-1","email":"user@example.com"}`))
		case "boom":
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"message":"upstream down"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	})

	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		if BearerToken(r) != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid token"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url, secret string) *GoTrueClient {
	return NewGoTrueClient(GoTrueConfig{URL: url + "/", AnonKey: "anon", ServiceRoleKey: "service", JWTSecret: secret})
}

func TestGoTrueClient_SignUp(t *testing.T) {
	srv := fakeGoTrue(t)
	c := newTestClient(srv.URL, "")
	ctx := context.Background()

	user, err := c.SignUp(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "new-user", user.ID)
	assert.Equal(t, "user@example.com", user.Email)

	_, err = c.SignUp(ctx, "taken@example.com", "secret1")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.Status)
	assert.Equal(t, "User already registered", upstream.Message)
}

func TestGoTrueClient_SignIn(t *testing.T) {
	srv := fakeGoTrue(t)
	c := newTestClient(srv.URL, "")
	ctx := context.Background()

	session, err := c.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "refresh-1", session.RefreshToken)
	assert.Equal(t, int64(1700000000), session.ExpiresAt)
	assert.Equal(t, "user-1", session.User.ID)

	_, err = c.SignIn(ctx, "user@example.com", "wrong")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "Invalid login credentials", upstream.Message)
}

func TestGoTrueClient_GetUserRemote(t *testing.T) {
	srv := fakeGoTrue(t)
	c := newTestClient(srv.URL, "")
	ctx := context.Background()

	user, err := c.GetUser(ctx, "access-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = c.GetUser(ctx, "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.GetUser(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = c.GetUser(ctx, "boom")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
}

func TestGoTrueClient_GetUserLocal(t *testing.T) {
	// No server: local verification must not make network calls.
	c := newTestClient("http://127.0.0.1:1", testSecret)

	token := signToken(t, testSecret, Claims{
		Email: "local@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "local-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	user, err := c.GetUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "local-user", user.ID)
	assert.Equal(t, "local@example.com", user.Email)
}

func TestGoTrueClient_SignOut(t *testing.T) {
	srv := fakeGoTrue(t)
	c := newTestClient(srv.URL, "")
	ctx := context.Background()

	require.NoError(t, c.SignOut(ctx, "refresh-1"))

	err := c.SignOut(ctx, "unknown")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "invalid token", upstream.Message)
}
