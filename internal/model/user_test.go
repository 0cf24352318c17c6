package model

import (
	"fmt"
	"testing"
)

func TestProfileUpdate_Apply(t *testing.T) {
	u := &User{
		Name:       "Dr. John Smith",
		Email:      "john.smith@university.edu",
		Phone:      "+1-555-0101",
		Department: "Computer Science",
		Subject:    "JavaScript, Python, Database",
	}

	name := "Dr. John A. Smith"
	subject := "Go"
	ProfileUpdate{Name: &name, Subject: &subject}.Apply(u)

	if u.Name != name {
		t.Errorf("Name = %q, want %q", u.Name, name)
	}
	if u.Subject != subject {
		t.Errorf("Subject = %q, want %q", u.Subject, subject)
	}
	if u.Email != "john.smith@university.edu" {
		t.Errorf("Email should be unchanged, got %q", u.Email)
	}
	if u.Department != "Computer Science" {
		t.Errorf("Department should be unchanged, got %q", u.Department)
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleTeacher, RoleStudent} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("guest").Valid() {
		t.Error("guest should be invalid")
	}
}

// TestIsCode はラップされたAPIErrorのコード判定を検証する。
func TestIsCode(t *testing.T) {
	err := fmt.Errorf("予約に失敗しました: %w", NewSlotConflictError(Slot{TeacherID: "t", Date: "2025-08-20", Time: "10:00"}))
	if !IsCode(err, ErrCodeSlotConflict) {
		t.Error("expected SLOT_CONFLICT")
	}
	if IsCode(err, ErrCodeAuthFailed) {
		t.Error("did not expect AUTH_FAILED")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeSlotConflict) {
		t.Error("plain error should not match")
	}
	if IsCode(nil, ErrCodeSlotConflict) {
		t.Error("nil should not match")
	}
}
