package session

import (
	"context"
	"testing"

	"github.com/hitoshi/slotbook/internal/model"
)

type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, email, password string, role model.Role) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	return m.authenticateFn(ctx, email, password, role)
}

func newTestManager() *Manager {
	return NewManager(&mockAuthenticator{
		authenticateFn: func(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
			if email == "admin@demo.com" && password == "password" && role == model.RoleAdmin {
				return &model.User{ID: "admin1", Email: email, Role: model.RoleAdmin, Name: "System Admin"}, nil
			}
			if email == "john.smith@school.edu" && password == "password" && role == model.RoleTeacher {
				return &model.User{ID: "teacher1", Email: email, Role: model.RoleTeacher, Name: "Dr. John Smith"}, nil
			}
			return nil, model.NewAuthFailedError()
		},
	})
}

func TestManager_LoginLogout(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if _, ok := m.Current(); ok {
		t.Fatal("no session expected before login")
	}

	s, err := m.Login(ctx, "admin@demo.com", "password", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if s.UserID != "admin1" || s.Role != model.RoleAdmin || s.Name != "System Admin" {
		t.Errorf("unexpected session: %+v", s)
	}

	cur, ok := m.Current()
	if !ok || cur.UserID != "admin1" {
		t.Errorf("Current() = %+v, %v", cur, ok)
	}

	prev := m.Logout()
	if prev == nil || prev.UserID != "admin1" {
		t.Errorf("Logout() = %+v", prev)
	}
	if _, ok := m.Current(); ok {
		t.Error("session should be cleared after logout")
	}
	if m.Logout() != nil {
		t.Error("second logout should return nil")
	}
}

// TestManager_FailedLoginKeepsSession はログイン失敗時に既存セッションが維持されることを検証する。
func TestManager_FailedLoginKeepsSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	m.Login(ctx, "admin@demo.com", "password", model.RoleAdmin)

	_, err := m.Login(ctx, "admin@demo.com", "wrong", model.RoleAdmin)
	if !model.IsCode(err, model.ErrCodeAuthFailed) {
		t.Fatalf("expected AUTH_FAILED, got %v", err)
	}
	cur, ok := m.Current()
	if !ok || cur.UserID != "admin1" {
		t.Errorf("existing session should remain, got %+v", cur)
	}
}

// TestManager_SingleActiveSession は新しいログインが既存セッションを置き換えることを検証する。
func TestManager_SingleActiveSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	m.Login(ctx, "admin@demo.com", "password", model.RoleAdmin)
	m.Login(ctx, "john.smith@school.edu", "password", model.RoleTeacher)

	cur, _ := m.Current()
	if cur.UserID != "teacher1" {
		t.Errorf("UserID = %q, want teacher1", cur.UserID)
	}
}

func TestManager_Require(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if _, err := m.Require("講師の作成", model.RoleAdmin); !model.IsCode(err, model.ErrCodeNotLoggedIn) {
		t.Errorf("expected NOT_LOGGED_IN, got %v", err)
	}

	m.Login(ctx, "john.smith@school.edu", "password", model.RoleTeacher)

	if _, err := m.Require("講師の作成", model.RoleAdmin); !model.IsCode(err, model.ErrCodeForbidden) {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
	s, err := m.Require("予約の承認", model.RoleTeacher, model.RoleAdmin)
	if err != nil {
		t.Fatalf("Require returned error: %v", err)
	}
	if s.UserID != "teacher1" {
		t.Errorf("UserID = %q, want teacher1", s.UserID)
	}
	if _, err := m.Require("受信箱"); err != nil {
		t.Errorf("any role should pass with no roles given: %v", err)
	}
}

func TestManager_EndIfUser(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	m.Login(ctx, "john.smith@school.edu", "password", model.RoleTeacher)

	m.EndIfUser("someone-else")
	if _, ok := m.Current(); !ok {
		t.Fatal("session for another user should remain")
	}
	m.EndIfUser("teacher1")
	if _, ok := m.Current(); ok {
		t.Error("session should end when its user is removed")
	}
}

// TestManager_CurrentReturnsCopy は返却値の変更がセッションに影響しないことを検証する。
func TestManager_CurrentReturnsCopy(t *testing.T) {
	m := newTestManager()
	m.Login(context.Background(), "admin@demo.com", "password", model.RoleAdmin)

	cur, _ := m.Current()
	cur.Role = model.RoleStudent

	again, _ := m.Current()
	if again.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", again.Role)
	}
}
