// Package audit は状態を変更する操作ごとに監査ログを出力する。
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/model"
)

// AnonymousActor はログインしていない操作者の表示名。
const AnonymousActor = "Anonymous"

// 監査ログのアクション名。
const (
	ActionLoginSucceeded      = "Login successful"
	ActionLoginFailed         = "Login failed"
	ActionLogout              = "Logout"
	ActionStudentRegistered   = "Student registration"
	ActionTeacherCreated      = "Teacher added"
	ActionTeacherUpdated      = "Teacher updated"
	ActionTeacherDeleted      = "Teacher deleted"
	ActionStudentApproved     = "Student approved"
	ActionStudentDeleted      = "Student deleted"
	ActionAvailabilityUpdated = "Availability updated"
	ActionAppointmentBooked   = "Appointment booked"
	ActionAppointmentApproved = "Appointment approved"
	ActionAppointmentRejected = "Appointment rejected"
	ActionAppointmentCanceled = "Appointment cancelled by student"
	ActionAppointmentDeleted  = "Appointment deleted by admin"
	ActionMessageSent         = "Message sent"
	ActionMessageRead         = "Message read"
)

// Entry は監査ログ1件分。
type Entry struct {
	Actor  string
	Role   model.Role
	Action string
	Detail string
	At     time.Time
}

// Recorder は監査ログの出力インターフェース。
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Logger はslogに監査ログを出力し、アクション別の件数をメトリクスに記録する。
type Logger struct {
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

var _ Recorder = (*Logger)(nil)

// NewLogger はLoggerを生成する。loggerがnilの場合はslog.Default()を使う。
func NewLogger(logger *slog.Logger, collector metrics.MetricsCollector) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Logger{logger: logger, metrics: collector}
}

// Record は監査ログを1行出力する。
// Actorが空の場合はAnonymousActor、Atがゼロ値の場合は現在時刻を使う。
func (l *Logger) Record(ctx context.Context, e Entry) {
	if e.Actor == "" {
		e.Actor = AnonymousActor
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("actor", e.Actor),
		slog.String("role", string(e.Role)),
		slog.String("action", e.Action),
		slog.String("detail", e.Detail),
		slog.Time("timestamp", e.At.UTC()),
	)
	l.metrics.RecordAuditAction(e.Action)
}
