package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/model"
)

type mockMetrics struct {
	metrics.Nop
	actions []string
}

func (m *mockMetrics) RecordAuditAction(action string) {
	m.actions = append(m.actions, action)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse audit line: %v\n%s", err, buf.String())
	}
	return entry
}

// TestLogger_Record は監査ログの属性とメトリクス記録を検証する。
func TestLogger_Record(t *testing.T) {
	var buf bytes.Buffer
	m := &mockMetrics{}
	l := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)), m)

	at := time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC)
	l.Record(context.Background(), Entry{
		Actor:  "Dr. John Smith",
		Role:   model.RoleTeacher,
		Action: ActionAppointmentApproved,
		Detail: "Appointment ID: apt1",
		At:     at,
	})

	entry := decodeLine(t, &buf)
	if entry["msg"] != "audit" {
		t.Errorf("msg = %v, want audit", entry["msg"])
	}
	checks := map[string]string{
		"actor":     "Dr. John Smith",
		"role":      "teacher",
		"action":    "Appointment approved",
		"detail":    "Appointment ID: apt1",
		"timestamp": "2025-08-18T10:00:00Z",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %q", k, entry[k], want)
		}
	}
	if len(m.actions) != 1 || m.actions[0] != ActionAppointmentApproved {
		t.Errorf("recorded actions = %v", m.actions)
	}
}

// TestLogger_Record_Anonymous は未ログイン操作の表示名を検証する。
func TestLogger_Record_Anonymous(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)), nil)

	l.Record(context.Background(), Entry{Action: ActionStudentRegistered, Detail: "Email: bob@x.edu"})

	entry := decodeLine(t, &buf)
	if entry["actor"] != AnonymousActor {
		t.Errorf("actor = %v, want %q", entry["actor"], AnonymousActor)
	}
	if ts, _ := entry["timestamp"].(string); ts == "" || ts == "0001-01-01T00:00:00Z" {
		t.Errorf("timestamp should default to now, got %v", entry["timestamp"])
	}
}
