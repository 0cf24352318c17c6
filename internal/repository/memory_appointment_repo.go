package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/hitoshi/slotbook/internal/model"
)

var _ AppointmentRepository = (*MemoryAppointmentRepo)(nil)

// MemoryAppointmentRepo はプロセス内で予約を保持するリポジトリ。
// 非キャンセルの予約について (teacherID, date, time) の一意性を保証する。
type MemoryAppointmentRepo struct {
	mu           sync.RWMutex
	appointments map[string]model.Appointment
	order        []string
}

// NewMemoryAppointmentRepo はMemoryAppointmentRepoを生成する。
func NewMemoryAppointmentRepo() *MemoryAppointmentRepo {
	return &MemoryAppointmentRepo{appointments: make(map[string]model.Appointment)}
}

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *MemoryAppointmentRepo) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// CreateIfSlotFree は同じ枠に非キャンセルの予約が無い場合のみ予約を作成する。
// 登録順で最初に見つかった重複で打ち切り、何も追加しない。
func (r *MemoryAppointmentRepo) CreateIfSlotFree(_ context.Context, appointment *model.Appointment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := appointment.Slot()
	for _, id := range r.order {
		existing := r.appointments[id]
		if existing.Status.Active() && existing.Slot() == slot {
			return false, nil
		}
	}

	if _, exists := r.appointments[appointment.ID]; !exists {
		r.order = append(r.order, appointment.ID)
	}
	r.appointments[appointment.ID] = *appointment
	return true, nil
}

// Mutate は指定IDの予約に排他区間内でfnを適用して保存する。
func (r *MemoryAppointmentRepo) Mutate(_ context.Context, id string, fn func(a *model.Appointment) error) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&a); err != nil {
		return nil, err
	}
	r.appointments[id] = a
	out := a
	return &out, nil
}

// DeleteByID は指定IDの予約を削除する。
func (r *MemoryAppointmentRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(r.appointments, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

// ListAll は全予約を登録順で返す。
func (r *MemoryAppointmentRepo) ListAll(_ context.Context) ([]*model.Appointment, error) {
	return r.list(func(*model.Appointment) bool { return true }), nil
}

// ListByStudentID は学生の予約を登録順で返す。
func (r *MemoryAppointmentRepo) ListByStudentID(_ context.Context, studentID string) ([]*model.Appointment, error) {
	return r.list(func(a *model.Appointment) bool { return a.StudentID == studentID }), nil
}

// ListByTeacherID は講師宛ての予約を登録順で返す。
func (r *MemoryAppointmentRepo) ListByTeacherID(_ context.Context, teacherID string) ([]*model.Appointment, error) {
	return r.list(func(a *model.Appointment) bool { return a.TeacherID == teacherID }), nil
}

// CountByStatus はステータス別の予約件数を返す。
func (r *MemoryAppointmentRepo) CountByStatus(_ context.Context) (model.AppointmentCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts model.AppointmentCounts
	for _, a := range r.appointments {
		counts.Total++
		switch a.Status {
		case model.AppointmentStatusPending:
			counts.Pending++
		case model.AppointmentStatusApproved:
			counts.Approved++
		case model.AppointmentStatusCancelled:
			counts.Cancelled++
		}
	}
	return counts, nil
}

func (r *MemoryAppointmentRepo) list(match func(*model.Appointment) bool) []*model.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.Appointment, 0)
	for _, id := range r.order {
		a := r.appointments[id]
		if match(&a) {
			results = append(results, &a)
		}
	}
	return results
}
