// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"umbradocs/internal/auth"
	"umbradocs/internal/middleware"
	"umbradocs/internal/models"
	"umbradocs/internal/store"
)

// Auth groups the authentication endpoints: register, login, logout,
// current-user, and password change.
type Auth struct {
	tokens    *auth.Tokens
	userStore *store.UserStore
	analytics *store.AnalyticsStore
	secure    bool // mark cookies Secure outside development
}

// NewAuth creates a new Auth handler group.
func NewAuth(tokens *auth.Tokens, userStore *store.UserStore, analytics *store.AnalyticsStore, secure bool) *Auth {
	return &Auth{
		tokens:    tokens,
		userStore: userStore,
		analytics: analytics,
		secure:    secure,
	}
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Telegram *string `json:"telegram"`
}

// Register creates a new account in PENDING status. The account cannot
// sign in until an administrator approves it.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateRegistration(req.Name, req.Email, req.Password, req.Telegram); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hash password failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &models.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.UserStatusPending,
	}
	if req.Telegram != nil && *req.Telegram != "" {
		user.Telegram = req.Telegram
	}

	created, err := a.userStore.Create(r.Context(), user)
	if err != nil {
		respondStoreError(w, err, "an account with this email or telegram already exists")
		return
	}

	a.track(r, "user_registration", &created.ID)

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":    created,
		"message": "Registration received. An administrator will review your account.",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the auth cookie. Pending, rejected,
// and blocked accounts are refused with a status-specific message.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := a.userStore.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	switch {
	case user.IsBlocked:
		respondError(w, http.StatusForbidden, "this account has been blocked")
		return
	case user.Status == models.UserStatusPending:
		respondError(w, http.StatusForbidden, "this account is awaiting approval")
		return
	case user.Status == models.UserStatusRejected:
		respondError(w, http.StatusForbidden, "this account was not approved")
		return
	}

	now := time.Now()
	token, err := a.tokens.Issue(user, now)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.userStore.StampLastLogin(r.Context(), user.ID, now); err != nil {
		slog.Error("stamp last login failed", "error", err, "user_id", user.ID)
	}

	a.setAuthCookie(w, token, now.Add(auth.TokenTTL))
	a.track(r, "user_login", &user.ID)

	respondJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// Logout clears the auth cookie. Always succeeds, even without a session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": actor})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword verifies the current password before replacing it.
func (a *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !auth.CheckPassword(actor.PasswordHash, req.CurrentPassword) {
		respondError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if msg := validatePassword(req.NewPassword); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("hash password failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.userStore.SetPasswordHash(r.Context(), actor.ID, hash); err != nil {
		slog.Error("set password failed", "error", err, "user_id", actor.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (a *Auth) setAuthCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) track(r *http.Request, event string, userID *uuid.UUID) {
	trackEvent(a.analytics, r, event, userID, nil)
}
