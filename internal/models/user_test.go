package models

import "testing"

func TestRoleValid(t *testing.T) {
	valid := []Role{RoleAdmin, RoleModerator, RoleMediaBuyer, RoleSupport, RoleUser}
	for _, r := range valid {
		if !r.Valid() {
			t.Errorf("Role(%q).Valid() = false, want true", r)
		}
	}

	invalid := []Role{"", "admin", "SUPERUSER", "GUEST"}
	for _, r := range invalid {
		if r.Valid() {
			t.Errorf("Role(%q).Valid() = true, want false", r)
		}
	}
}

func TestUserStatusValid(t *testing.T) {
	valid := []UserStatus{UserStatusPending, UserStatusApproved, UserStatusRejected}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("UserStatus(%q).Valid() = false, want true", s)
		}
	}
	if UserStatus("BANNED").Valid() {
		t.Error("legacy BANNED status must not be valid")
	}
}

// TestUserCanAuthenticate verifies the gate between account state and
// credential validity: only approved, unblocked accounts may hold a
// working token.
func TestUserCanAuthenticate(t *testing.T) {
	tests := []struct {
		name    string
		status  UserStatus
		blocked bool
		want    bool
	}{
		{name: "approved unblocked", status: UserStatusApproved, blocked: false, want: true},
		{name: "approved but blocked", status: UserStatusApproved, blocked: true, want: false},
		{name: "pending", status: UserStatusPending, blocked: false, want: false},
		{name: "rejected", status: UserStatusRejected, blocked: false, want: false},
		{name: "pending and blocked", status: UserStatusPending, blocked: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Status: tt.status, IsBlocked: tt.blocked}
			if got := u.CanAuthenticate(); got != tt.want {
				t.Errorf("CanAuthenticate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	u := &User{Role: RoleAdmin}
	if !u.IsAdmin() {
		t.Error("admin role must report IsAdmin")
	}
	for _, r := range []Role{RoleModerator, RoleMediaBuyer, RoleSupport, RoleUser} {
		u.Role = r
		if u.IsAdmin() {
			t.Errorf("role %q must not report IsAdmin", r)
		}
	}
}
