// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"umbradocs/internal/auth"
	"umbradocs/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// actorKey is the context key for the authenticated actor.
const actorKey contextKey = "actor"

// UserFinder loads the account behind a verified token. A token is only
// as valid as its account: blocked or no-longer-approved users are
// treated as unauthenticated even when the signature checks out.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// LoadActor verifies the auth token (cookie or bearer header), loads the
// account, and stores it in the request context. It does NOT enforce
// authentication — requests without a usable credential simply proceed
// with no actor.
func LoadActor(tokens *auth.Tokens, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				// Expired or tampered — same as no token.
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil || user == nil || !user.CanAuthenticate() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest extracts the raw token from the auth cookie or an
// Authorization: Bearer header, cookie first.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// RequireAuth rejects requests with no authenticated actor (401).
// Must be applied after LoadActor in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromCtx(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the admin surface: no actor is 401, a non-admin
// actor is 403. The distinction is part of the API contract.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromCtx(r.Context())
		switch err := auth.Authorize(actor, auth.ActionReadAdminList); err {
		case nil:
			next.ServeHTTP(w, r)
		case auth.ErrUnauthenticated:
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
		default:
			writeJSONError(w, http.StatusForbidden, "admin access required")
		}
	})
}

// ActorFromCtx extracts the authenticated actor from the request
// context. Returns nil if the request is unauthenticated.
func ActorFromCtx(ctx context.Context) *models.User {
	actor, _ := ctx.Value(actorKey).(*models.User)
	return actor
}

// WithActor returns a context carrying the actor. Used by tests and by
// LoadActor.
func WithActor(ctx context.Context, actor *models.User) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
