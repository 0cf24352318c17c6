// Package seed はデモ用のサンプルデータを投入する。
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
)

// Stores はサンプルデータの投入先。
type Stores struct {
	Users        repository.UserRepository
	Availability repository.AvailabilityRepository
	Appointments repository.AppointmentRepository
	Messages     repository.MessageRepository
}

// NewMemoryStores は空のインメモリストア一式を生成する。
func NewMemoryStores() Stores {
	return Stores{
		Users:        repository.NewMemoryUserRepo(),
		Availability: repository.NewMemoryAvailabilityRepo(),
		Appointments: repository.NewMemoryAppointmentRepo(),
		Messages:     repository.NewMemoryMessageRepo(),
	}
}

// 固定ID。デモ手順やテストから参照する。
const (
	AdminID       = "admin1"
	Teacher1ID    = "teacher1"
	Teacher2ID    = "teacher2"
	Student1ID    = "student1"
	Student2ID    = "student2"
	Appointment1  = "apt1"
	Appointment2  = "apt2"
	Message1      = "msg1"
	AdminEmail    = "admin@demo.com"
	AdminPassword = "password"
)

// Users はサンプルのユーザー一覧を返す。
func Users() []*model.User {
	return []*model.User{
		{ID: AdminID, Email: AdminEmail, Password: AdminPassword, Role: model.RoleAdmin, Name: "System Admin", Approved: true},
		{
			ID: Teacher1ID, Email: "john.smith@school.edu", Password: "password", Role: model.RoleTeacher,
			Name: "Dr. John Smith", Phone: "+1-555-0101", Department: "Computer Science",
			Subject: "JavaScript, Python, Database", Approved: true,
		},
		{
			ID: Teacher2ID, Email: "sarah.johnson@school.edu", Password: "password", Role: model.RoleTeacher,
			Name: "Prof. Sarah Johnson", Phone: "+1-555-0102", Department: "Mathematics",
			Subject: "Calculus, Statistics, Algebra", Approved: true,
		},
		{
			ID: Student1ID, Email: "alice.wilson@student.edu", Password: "password", Role: model.RoleStudent,
			Name: "Alice Wilson", Phone: "+1-555-0201", Department: "Computer Science", Approved: true,
		},
		{
			ID: Student2ID, Email: "bob.jones@student.edu", Password: "password", Role: model.RoleStudent,
			Name: "Bob Jones", Phone: "+1-555-0202", Department: "Mathematics", Approved: false,
		},
	}
}

// Availability はサンプルの講師別空き時間を返す。
func Availability() map[string]model.Availability {
	return map[string]model.Availability{
		Teacher1ID: {
			model.Monday:    "09:00-12:00,14:00-17:00",
			model.Tuesday:   "10:00-13:00,15:00-18:00",
			model.Wednesday: "09:00-12:00",
			model.Thursday:  "10:00-13:00,15:00-18:00",
			model.Friday:    "09:00-12:00,14:00-16:00",
		},
		Teacher2ID: {
			model.Monday:    "08:00-11:00,13:00-16:00",
			model.Tuesday:   "09:00-12:00,14:00-17:00",
			model.Wednesday: "08:00-11:00",
			model.Thursday:  "09:00-12:00,14:00-17:00",
			model.Friday:    "08:00-11:00,13:00-15:00",
		},
	}
}

// Appointments はサンプルの予約一覧を返す。
func Appointments() []*model.Appointment {
	return []*model.Appointment{
		{
			ID: Appointment1, StudentID: Student1ID, TeacherID: Teacher1ID,
			Date: "2025-08-18", Time: "10:00", Status: model.AppointmentStatusPending,
			Purpose: "Project Discussion", Message: "Need help with my final project",
		},
		{
			ID: Appointment2, StudentID: Student1ID, TeacherID: Teacher2ID,
			Date: "2025-08-19", Time: "14:00", Status: model.AppointmentStatusApproved,
			Purpose: "Math Tutoring", Message: "Statistics homework questions",
		},
	}
}

// Messages はサンプルのメッセージ一覧を返す。
func Messages() []*model.Message {
	return []*model.Message{
		{
			ID: Message1, SenderID: Student1ID, ReceiverID: Teacher1ID,
			Content:   "Hello Professor, I need help with the assignment",
			Timestamp: time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC),
		},
	}
}

// Load はサンプルデータ一式を投入する。
// 既に同じメールアドレスや予約枠が存在する場合はエラーを返す。
func Load(ctx context.Context, s Stores, now time.Time) error {
	for _, u := range Users() {
		u.CreatedAt, u.UpdatedAt = now, now
		ok, err := s.Users.CreateIfEmailFree(ctx, u)
		if err != nil {
			return fmt.Errorf("サンプルユーザーの投入に失敗しました: %w", err)
		}
		if !ok {
			return fmt.Errorf("サンプルユーザーのメールアドレスが重複しています: %s", u.Email)
		}
	}

	for teacherID, a := range Availability() {
		if err := s.Availability.Replace(ctx, teacherID, a); err != nil {
			return fmt.Errorf("サンプル空き時間の投入に失敗しました: %w", err)
		}
	}

	for _, a := range Appointments() {
		a.CreatedAt, a.UpdatedAt = now, now
		ok, err := s.Appointments.CreateIfSlotFree(ctx, a)
		if err != nil {
			return fmt.Errorf("サンプル予約の投入に失敗しました: %w", err)
		}
		if !ok {
			return fmt.Errorf("サンプル予約の枠が重複しています: %s", a.ID)
		}
	}

	for _, m := range Messages() {
		if err := s.Messages.Create(ctx, m); err != nil {
			return fmt.Errorf("サンプルメッセージの投入に失敗しました: %w", err)
		}
	}
	return nil
}
