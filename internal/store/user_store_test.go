// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"umbradocs/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-create-" + uuid.NewString()[:8] + "@store-test.local"
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE email = $1", email) })

	user, err := s.Create(ctx, &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Status:       models.UserStatusPending,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Email != email {
		t.Errorf("email: got %q, want %q", user.Email, email)
	}
	if user.Status != models.UserStatusPending {
		t.Errorf("status: got %q, want PENDING", user.Status)
	}
	if user.IsBlocked {
		t.Error("new user should not be blocked")
	}

	// Duplicate email is a conflict, not an opaque error.
	_, err = s.Create(ctx, &models.User{
		Email:        email,
		Name:         "Other",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Status:       models.UserStatusPending,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email: got %v, want ErrConflict", err)
	}
}

func TestUserStoreFindByEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	// Not found returns nil, nil.
	user, err := s.FindByEmail(ctx, "no-such-user@store-test.local")
	if err != nil {
		t.Fatalf("FindByEmail (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	created := seedUser(t, db, models.RoleUser)
	user, err = s.FindByEmail(ctx, created.Email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if user == nil || user.ID != created.ID {
		t.Fatalf("expected user %s, got %+v", created.ID, user)
	}
}

func TestUserStoreStatusAndBlock(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	user := seedUser(t, db, models.RoleUser)

	if err := s.SetStatus(ctx, user.ID, models.UserStatusRejected); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := s.SetBlocked(ctx, user.ID, true); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}

	got, err := s.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.UserStatusRejected {
		t.Errorf("status: got %q, want REJECTED", got.Status)
	}
	if !got.IsBlocked {
		t.Error("expected blocked")
	}
	if got.CanAuthenticate() {
		t.Error("rejected+blocked user must not authenticate")
	}
}

func TestUserStoreUpdateProfile(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	user := seedUser(t, db, models.RoleUser)
	other := seedUser(t, db, models.RoleUser)

	name := "Renamed"
	role := models.RoleSupport
	if err := s.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name, Role: &role}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	got, _ := s.FindByID(ctx, user.ID)
	if got.Name != "Renamed" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.Role != models.RoleSupport {
		t.Errorf("role: got %q", got.Role)
	}
	// Untouched fields survive a partial update.
	if got.Email != user.Email {
		t.Errorf("email changed unexpectedly: %q", got.Email)
	}

	// Email collision with another account is a conflict.
	if err := s.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: &other.Email}); !errors.Is(err, ErrConflict) {
		t.Errorf("email collision: got %v, want ErrConflict", err)
	}
}

func TestUserStoreStampLastLogin(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	user := seedUser(t, db, models.RoleUser)
	if user.LastLoginAt != nil {
		t.Error("new user should not have last_login_at")
	}

	now := time.Now().Truncate(time.Millisecond)
	if err := s.StampLastLogin(ctx, user.ID, now); err != nil {
		t.Fatalf("StampLastLogin: %v", err)
	}

	got, _ := s.FindByID(ctx, user.ID)
	if got.LastLoginAt == nil {
		t.Fatal("last_login_at not stamped")
	}
}

func TestUserStoreListFilters(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	user := seedUser(t, db, models.RoleSupport)

	users, err := s.List(ctx, models.UserStatusApproved, models.RoleSupport)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var found bool
	for _, u := range users {
		if u.ID == user.ID {
			found = true
		}
		if u.Role != models.RoleSupport {
			t.Errorf("role filter leaked %q", u.Role)
		}
		if u.Status != models.UserStatusApproved {
			t.Errorf("status filter leaked %q", u.Status)
		}
	}
	if !found {
		t.Error("seeded user missing from filtered list")
	}
}
