// Package appointment は面談予約の作成と状態遷移のドメインロジックを提供する。
package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
)

// AvailabilityChecker は講師の空き時間照合のインターフェース。
type AvailabilityChecker interface {
	Covers(ctx context.Context, teacherID, date, hhmm string) (bool, error)
}

// BookingRequest は学生からの予約申請内容。
type BookingRequest struct {
	StudentID string
	TeacherID string
	Date      string
	Time      string
	Purpose   string
	Message   string
}

// ServiceConfig は予約サービスの設定。
type ServiceConfig struct {
	// EnforceAvailability がtrueの場合、講師の空き時間外の予約を拒否する。
	EnforceAvailability bool
}

// Service は予約管理のサービス層。
type Service struct {
	repo         repository.AppointmentRepository
	availability AvailabilityChecker
	metrics      metrics.MetricsCollector
	config       ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
// availabilityはEnforceAvailabilityがfalseの場合nilでもよい。
func NewService(
	repo repository.AppointmentRepository,
	availability AvailabilityChecker,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:         repo,
		availability: availability,
		metrics:      collector,
		config:       config,
	}
}

// Book は承認待ちの予約を作成し、予約IDを返す。
// 同じ講師・日付・時刻に非キャンセルの予約がある場合はSlotConflictErrorを返し、何も作成しない。
func (s *Service) Book(ctx context.Context, req BookingRequest) (string, error) {
	if s.config.EnforceAvailability && s.availability != nil {
		ok, err := s.availability.Covers(ctx, req.TeacherID, req.Date, req.Time)
		if err != nil {
			return "", fmt.Errorf("空き時間の照合に失敗しました: %w", err)
		}
		if !ok {
			s.metrics.RecordBooking(metrics.BookingOutsideAvailability)
			return "", model.NewOutsideAvailabilityError(req.Date, req.Time)
		}
	}

	now := time.Now()
	a := &model.Appointment{
		ID:        uuid.New().String(),
		StudentID: req.StudentID,
		TeacherID: req.TeacherID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    model.AppointmentStatusPending,
		Purpose:   req.Purpose,
		Message:   req.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.CreateIfSlotFree(ctx, a)
	if err != nil {
		return "", fmt.Errorf("予約の作成に失敗しました: %w", err)
	}
	if !created {
		s.metrics.RecordBooking(metrics.BookingConflict)
		slog.Warn("予約枠が重複しています",
			slog.String("teacher_id", req.TeacherID),
			slog.String("date", req.Date),
			slog.String("time", req.Time),
		)
		return "", model.NewSlotConflictError(a.Slot())
	}

	s.metrics.RecordBooking(metrics.BookingCreated)
	slog.Info("予約を作成しました",
		slog.String("appointment_id", a.ID),
		slog.String("student_id", a.StudentID),
		slog.String("teacher_id", a.TeacherID),
	)
	return a.ID, nil
}

// Approve は承認待ちの予約を承認する。
func (s *Service) Approve(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.EventApprove)
}

// Reject は承認待ちの予約を却下する。却下された予約はキャンセル扱いになる。
func (s *Service) Reject(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.EventReject)
}

// Cancel は承認待ちまたは承認済みの予約をキャンセルする。
func (s *Service) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.EventCancel)
}

// transition は状態遷移表に従って予約の状態を更新する。
// 遷移できない組み合わせはInvalidTransitionErrorを返し、状態を変更しない。
func (s *Service) transition(ctx context.Context, id string, ev model.AppointmentEvent) (*model.Appointment, error) {
	a, err := s.repo.Mutate(ctx, id, func(a *model.Appointment) error {
		next, ok := a.Status.Next(ev)
		if !ok {
			return model.NewInvalidTransitionError(a.Status, ev)
		}
		a.Status = next
		a.UpdatedAt = time.Now()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewAppointmentNotFoundError(id)
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return nil, apiErr
	}
	if err != nil {
		return nil, fmt.Errorf("予約の更新に失敗しました: %w", err)
	}

	s.metrics.RecordTransition(ev)
	slog.Info("予約の状態を更新しました",
		slog.String("appointment_id", id),
		slog.String("event", string(ev)),
		slog.String("status", string(a.Status)),
	)
	return a, nil
}

// Delete は予約を物理削除する。状態に関わらず削除できる。
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewAppointmentNotFoundError(id)
	}
	if err != nil {
		return fmt.Errorf("予約の削除に失敗しました: %w", err)
	}

	slog.Info("予約を削除しました", slog.String("appointment_id", id))
	return nil
}

// Get は指定IDの予約を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("予約の取得に失敗しました: %w", err)
	}
	if a == nil {
		return nil, model.NewAppointmentNotFoundError(id)
	}
	return a, nil
}

// ListFor は役割に応じた予約一覧を返す。
// 学生は自分の予約、講師は自分宛ての予約、管理者は全予約を参照する。
func (s *Service) ListFor(ctx context.Context, userID string, role model.Role) ([]*model.Appointment, error) {
	var (
		list []*model.Appointment
		err  error
	)
	switch role {
	case model.RoleStudent:
		list, err = s.repo.ListByStudentID(ctx, userID)
	case model.RoleTeacher:
		list, err = s.repo.ListByTeacherID(ctx, userID)
	case model.RoleAdmin:
		list, err = s.repo.ListAll(ctx)
	default:
		return nil, model.NewForbiddenError("予約一覧の参照")
	}
	if err != nil {
		return nil, fmt.Errorf("予約一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}
