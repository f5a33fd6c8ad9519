package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"umbradocs/internal/models"
)

// registerBody builds a registration JSON payload with a unique email.
func registerBody(t *testing.T) (string, []byte) {
	t.Helper()
	email := "user-" + uuid.NewString()[:8] + "@test.local"
	body, err := json.Marshal(map[string]any{
		"name":     "Flow Tester",
		"email":    email,
		"password": "secret1",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return email, body
}

func TestRegistrationAndApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createTestAdmin(t)

	email, body := registerBody(t)
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM users WHERE email = $1", email)
	})

	// Register a new account.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	env.Auth.Register(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: got status %d, want 201: %s", rr.Code, rr.Body.String())
	}

	user, err := env.Users.FindByEmail(context.Background(), email)
	if err != nil || user == nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if user.Status != models.UserStatusPending {
		t.Errorf("new account status = %s, want PENDING", user.Status)
	}
	if user.Role != models.RoleUser {
		t.Errorf("new account role = %s, want USER", user.Role)
	}

	login := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"email": email, "password": "secret1"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		env.Auth.Login(rr, req)
		return rr
	}

	// Pending accounts cannot sign in.
	if rr := login(); rr.Code != http.StatusForbidden {
		t.Errorf("pending login: got status %d, want 403", rr.Code)
	}

	// Approve via the admin endpoint.
	req = httptest.NewRequest(http.MethodPost, "/api/admin/users/"+user.ID.String()+"/approve", nil)
	req = asActor(withChiURLParam(req, "id", user.ID.String()), admin)
	rr = httptest.NewRecorder()
	env.AdminUsers.Approve(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("approve: got status %d, want 200: %s", rr.Code, rr.Body.String())
	}

	// Now login succeeds and sets the auth cookie.
	rr = login()
	if rr.Code != http.StatusOK {
		t.Fatalf("approved login: got status %d, want 200: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == "auth_token" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("login did not set the auth cookie")
	}

	// Blocked accounts are refused even when approved.
	if err := env.Users.SetBlocked(context.Background(), user.ID, true); err != nil {
		t.Fatalf("block: %v", err)
	}
	if rr := login(); rr.Code != http.StatusForbidden {
		t.Errorf("blocked login: got status %d, want 403", rr.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createTestAdmin(t)

	body, _ := json.Marshal(map[string]string{"email": admin.Email, "password": "wrong-pass1"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	env.Auth.Login(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", rr.Code)
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createTestAdmin(t)

	body, _ := json.Marshal(map[string]string{
		"currentPassword": "admin-pass1",
		"newPassword":     "fresh-pass2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", bytes.NewReader(body))
	req = asActor(req, admin)
	rr := httptest.NewRecorder()
	env.Auth.ChangePassword(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
	}

	// Wrong current password is refused.
	body, _ = json.Marshal(map[string]string{
		"currentPassword": "admin-pass1",
		"newPassword":     "another-pass3",
	})
	req = httptest.NewRequest(http.MethodPost, "/api/auth/change-password", bytes.NewReader(body))
	req = asActor(req, admin)
	rr = httptest.NewRecorder()
	env.Auth.ChangePassword(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("stale current password: got status %d, want 401", rr.Code)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createTestAdmin(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = asActor(req, admin)
	rr := httptest.NewRecorder()
	env.Auth.Me(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rr.Code)
	}

	var resp struct {
		User models.User `json:"user"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.ID != admin.ID {
		t.Errorf("me returned user %s, want %s", resp.User.ID, admin.ID)
	}
}
