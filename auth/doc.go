// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth integrates the hosted identity provider.

# Provider

Password sign-up, sign-in, sign-out and token validation are delegated to a
Supabase-compatible GoTrue server; this package never issues tokens:

	provider := auth.NewGoTrueClient(auth.GoTrueConfig{
		URL:            cfg.SupabaseURL,
		AnonKey:        cfg.SupabaseAnonKey,
		ServiceRoleKey: cfg.SupabaseServiceRoleKey,
		JWTSecret:      cfg.SupabaseJWTSecret,
	})

Sign-up and sign-in use the anon key; sign-out and token lookups use the
service role key. Non-2xx replies become *UpstreamError carrying the
provider's message.

# Bearer Tokens

BearerToken reads the "Authorization: Bearer <token>" header. GetUser
returns ErrUnauthorized for invalid or expired tokens. When a JWT secret is
configured tokens are verified locally (HS256, exp, non-empty sub) with
golang-jwt instead of calling /auth/v1/user.
*/
package auth
