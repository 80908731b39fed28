// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package auth

import (
	"context"
	"net/http"
	"strings"
)

// Principal is the authenticated caller, resolved from the access token.
type Principal struct {
	UserID int64
	Email  string
}

type principalKey struct{}

// ContextWithPrincipal attaches an authenticated principal. Exposed for
// tests that exercise handlers without the middleware.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticator is the bearer-token middleware guarding the recommendation
// endpoints. Missing or invalid credentials are rejected before any queue
// interaction.
type Authenticator struct {
	jwt        *JWTManager
	rejectFunc func(w http.ResponseWriter, r *http.Request, reason string)
}

// NewAuthenticator builds the middleware. reject writes the unauthorized
// response so the API layer keeps control of the error envelope shape.
func NewAuthenticator(jwt *JWTManager, reject func(w http.ResponseWriter, r *http.Request, reason string)) *Authenticator {
	return &Authenticator{jwt: jwt, rejectFunc: reject}
}

// Middleware validates the Authorization header and stores the principal in
// the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			a.rejectFunc(w, r, "missing bearer token")
			return
		}

		claims, err := a.jwt.Validate(token, TokenTypeAccess)
		if err != nil {
			a.rejectFunc(w, r, "invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			a.rejectFunc(w, r, "invalid or expired token")
			return
		}

		ctx := ContextWithPrincipal(r.Context(), Principal{UserID: userID, Email: claims.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
