// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/youjianchi/quickPoll/models"
)

var (
	ErrUnauthorized = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authentication required")
)

// Provider is the hosted identity service. Tokens are issued and revoked by
// the provider; this application only forwards credentials and checks tokens.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (models.User, error)
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, accessToken string) (models.User, error)
}

// UpstreamError is a non-success reply from the identity provider
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.Status, e.Message)
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Claims are the fields of a provider-issued access token we rely on
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 access tokens locally with the project's JWT secret
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify returns the token's user. Expired, malformed, wrongly signed and
// subject-less tokens (such as the anon key) yield ErrUnauthorized.
func (v *Verifier) Verify(token string) (models.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.User{}, ErrUnauthorized
	}
	if claims.Subject == "" {
		return models.User{}, ErrUnauthorized
	}

	return models.User{ID: claims.Subject, Email: claims.Email}, nil
}
