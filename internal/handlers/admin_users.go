// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"umbradocs/internal/auth"
	"umbradocs/internal/middleware"
	"umbradocs/internal/models"
	"umbradocs/internal/store"
)

// AdminUsers groups the account management endpoints: the approval
// queue, blocking, profile edits, and deletion. Every mutation runs
// through the target-protection check so ADMIN accounts cannot be
// modified over the API.
type AdminUsers struct {
	users *store.UserStore
}

// NewAdminUsers creates a new AdminUsers handler group.
func NewAdminUsers(users *store.UserStore) *AdminUsers {
	return &AdminUsers{users: users}
}

// List returns accounts, optionally filtered by status and role.
func (h *AdminUsers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var status models.UserStatus
	if s := models.UserStatus(q.Get("status")); s.Valid() {
		status = s
	}
	var role models.Role
	if ro := models.Role(q.Get("role")); ro.Valid() {
		role = ro
	}

	users, err := h.users.List(r.Context(), status, role)
	if err != nil {
		slog.Error("list users failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Approve moves a pending account to APPROVED.
func (h *AdminUsers) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.UserStatusApproved)
}

// Reject moves an account to REJECTED.
func (h *AdminUsers) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.UserStatusRejected)
}

func (h *AdminUsers) setStatus(w http.ResponseWriter, r *http.Request, status models.UserStatus) {
	target, ok := h.protectedTarget(w, r)
	if !ok {
		return
	}

	if err := h.users.SetStatus(r.Context(), target.ID, status); err != nil {
		slog.Error("set user status failed", "error", err, "user_id", target.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	target.Status = status
	respondJSON(w, http.StatusOK, map[string]any{"user": target})
}

// Block prevents an account from signing in without changing its
// approval status.
func (h *AdminUsers) Block(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// Unblock lifts a block.
func (h *AdminUsers) Unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *AdminUsers) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	target, ok := h.protectedTarget(w, r)
	if !ok {
		return
	}

	if err := h.users.SetBlocked(r.Context(), target.ID, blocked); err != nil {
		slog.Error("set user blocked failed", "error", err, "user_id", target.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	target.IsBlocked = blocked
	respondJSON(w, http.StatusOK, map[string]any{"user": target})
}

type userUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// Update applies a partial profile edit to a non-admin account. Role
// changes to ADMIN are refused: promotion happens out of band.
func (h *AdminUsers) Update(w http.ResponseWriter, r *http.Request) {
	target, ok := h.protectedTarget(w, r)
	if !ok {
		return
	}

	var req userUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var p store.ProfileUpdate

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < minNameLen {
			respondError(w, http.StatusBadRequest, "Name must be at least 2 characters.")
			return
		}
		p.Name = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailPattern.MatchString(email) {
			respondError(w, http.StatusBadRequest, "A valid email address is required.")
			return
		}
		p.Email = &email
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			respondError(w, http.StatusBadRequest, "invalid role")
			return
		}
		if role == models.RoleAdmin {
			respondError(w, http.StatusForbidden, "cannot grant the admin role over the API")
			return
		}
		p.Role = &role
	}
	if req.Password != nil {
		if msg := validatePassword(*req.Password); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			slog.Error("hash password failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		p.PasswordHash = &hash
	}

	if err := h.users.UpdateProfile(r.Context(), target.ID, p); err != nil {
		respondStoreError(w, err, "an account with this email already exists")
		return
	}

	updated, err := h.users.FindByID(r.Context(), target.ID)
	if err != nil {
		slog.Error("reload user failed", "error", err, "user_id", target.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": updated})
}

// Delete removes a non-admin account.
func (h *AdminUsers) Delete(w http.ResponseWriter, r *http.Request) {
	target, ok := h.protectedTarget(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), target.ID); err != nil {
		slog.Error("delete user failed", "error", err, "user_id", target.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// protectedTarget loads the target account from the URL and enforces the
// admin-target protection rule. It writes the error response itself and
// returns ok=false when the caller should stop.
func (h *AdminUsers) protectedTarget(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return nil, false
	}

	target, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find user failed", "error", err, "user_id", id)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if target == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return nil, false
	}

	actor := middleware.ActorFromCtx(r.Context())
	if err := auth.AuthorizeUserTarget(actor, target); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			respondError(w, http.StatusUnauthorized, "authentication required")
		} else {
			respondError(w, http.StatusForbidden, "admin accounts cannot be modified")
		}
		return nil, false
	}

	return target, true
}
