// Package report は名簿と予約から集計値と表示用の一覧を導出する。
// 値は呼び出しごとに再計算し、キャッシュしない。
package report

import (
	"context"
	"fmt"

	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
)

// UnknownName は参照先のユーザーが存在しない場合の表示名。
const UnknownName = "Unknown"

// Stats は管理者ダッシュボードの集計値。
type Stats struct {
	TotalTeachers         int
	ApprovedStudents      int
	PendingStudents       int
	TotalAppointments     int
	PendingAppointments   int
	ApprovedAppointments  int
	CancelledAppointments int
}

// AppointmentView は学生名・講師名を解決した予約。
type AppointmentView struct {
	model.Appointment
	StudentName string
	TeacherName string
}

// MessageView は送信者名を解決したメッセージ。
type MessageView struct {
	model.Message
	SenderName string
}

// Service は集計と一覧表示のサービス層。
type Service struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users repository.UserRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{
		users:        users,
		appointments: appointments,
	}
}

// Stats は現時点の集計値を返す。
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	teachers, err := s.users.List(ctx, model.UserFilter{Role: model.RoleTeacher})
	if err != nil {
		return Stats{}, fmt.Errorf("講師一覧の取得に失敗しました: %w", err)
	}
	students, err := s.users.List(ctx, model.UserFilter{Role: model.RoleStudent})
	if err != nil {
		return Stats{}, fmt.Errorf("学生一覧の取得に失敗しました: %w", err)
	}
	counts, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("予約件数の取得に失敗しました: %w", err)
	}

	st := Stats{
		TotalTeachers:         len(teachers),
		TotalAppointments:     counts.Total,
		PendingAppointments:   counts.Pending,
		ApprovedAppointments:  counts.Approved,
		CancelledAppointments: counts.Cancelled,
	}
	for _, u := range students {
		if u.Approved {
			st.ApprovedStudents++
		} else {
			st.PendingStudents++
		}
	}
	return st, nil
}

// TeacherDirectory は予約画面向けに講師を絞り込む。
// 学科は完全一致、担当科目は大文字小文字を区別しない部分一致。空文字は条件に含めない。
func (s *Service) TeacherDirectory(ctx context.Context, department, subject string) ([]*model.User, error) {
	list, err := s.users.List(ctx, model.UserFilter{
		Role:       model.RoleTeacher,
		Department: department,
		Subject:    subject,
	})
	if err != nil {
		return nil, fmt.Errorf("講師一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}

// AppointmentViews は予約一覧に学生名・講師名を付与する。
// 削除済みユーザーはUnknownNameで表示する。
func (s *Service) AppointmentViews(ctx context.Context, list []*model.Appointment) ([]AppointmentView, error) {
	names := newNameCache(s.users)
	views := make([]AppointmentView, 0, len(list))
	for _, a := range list {
		student, err := names.lookup(ctx, a.StudentID)
		if err != nil {
			return nil, err
		}
		teacher, err := names.lookup(ctx, a.TeacherID)
		if err != nil {
			return nil, err
		}
		views = append(views, AppointmentView{Appointment: *a, StudentName: student, TeacherName: teacher})
	}
	return views, nil
}

// InboxViews はメッセージ一覧に送信者名を付与する。
func (s *Service) InboxViews(ctx context.Context, list []*model.Message) ([]MessageView, error) {
	names := newNameCache(s.users)
	views := make([]MessageView, 0, len(list))
	for _, m := range list {
		sender, err := names.lookup(ctx, m.SenderID)
		if err != nil {
			return nil, err
		}
		views = append(views, MessageView{Message: *m, SenderName: sender})
	}
	return views, nil
}

// nameCache は1回の一覧生成の間だけユーザー名を保持する。
type nameCache struct {
	users repository.UserRepository
	names map[string]string
}

func newNameCache(users repository.UserRepository) *nameCache {
	return &nameCache{users: users, names: make(map[string]string)}
}

func (c *nameCache) lookup(ctx context.Context, userID string) (string, error) {
	if name, ok := c.names[userID]; ok {
		return name, nil
	}
	u, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	name := UnknownName
	if u != nil {
		name = u.Name
	}
	c.names[userID] = name
	return name, nil
}
