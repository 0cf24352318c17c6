package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
	"github.com/hitoshi/slotbook/internal/seed"
)

type mockUserRepo struct {
	repository.UserRepository
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

func newSeededService(t *testing.T) (*Service, seed.Stores) {
	t.Helper()
	stores := seed.NewMemoryStores()
	if err := seed.Load(context.Background(), stores, time.Now()); err != nil {
		t.Fatalf("seed.Load returned error: %v", err)
	}
	return NewService(stores.Users, stores.Appointments), stores
}

// TestService_Stats はサンプルデータの集計値を検証する。
func TestService_Stats(t *testing.T) {
	svc, _ := newSeededService(t)

	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	want := Stats{
		TotalTeachers:        2,
		ApprovedStudents:     1,
		PendingStudents:      1,
		TotalAppointments:    2,
		PendingAppointments:  1,
		ApprovedAppointments: 1,
	}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}
}

// TestService_Stats_Recomputed は変更が次回の集計に反映されることを検証する。
func TestService_Stats_Recomputed(t *testing.T) {
	ctx := context.Background()
	svc, stores := newSeededService(t)

	stores.Users.Mutate(ctx, seed.Student2ID, func(u *model.User) error {
		u.Approved = true
		return nil
	})

	st, _ := svc.Stats(ctx)
	if st.ApprovedStudents != 2 || st.PendingStudents != 0 {
		t.Errorf("students approved=%d pending=%d, want 2/0", st.ApprovedStudents, st.PendingStudents)
	}
}

func TestService_TeacherDirectory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededService(t)

	tests := []struct {
		name       string
		department string
		subject    string
		want       []string
	}{
		{"条件なし", "", "", []string{seed.Teacher1ID, seed.Teacher2ID}},
		{"学科", "Mathematics", "", []string{seed.Teacher2ID}},
		{"科目（小文字）", "", "python", []string{seed.Teacher1ID}},
		{"学科と科目の不一致", "Mathematics", "python", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.TeacherDirectory(ctx, tt.department, tt.subject)
			if err != nil {
				t.Fatalf("TeacherDirectory returned error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d teachers, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d] = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

// TestService_AppointmentViews_UnknownAfterDelete は削除済みユーザーの名前がUnknownになることを検証する。
func TestService_AppointmentViews_UnknownAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, stores := newSeededService(t)

	if err := stores.Users.DeleteByID(ctx, seed.Teacher1ID); err != nil {
		t.Fatalf("DeleteByID returned error: %v", err)
	}

	list, _ := stores.Appointments.ListAll(ctx)
	if len(list) != 2 {
		t.Fatalf("appointments should survive user deletion, got %d", len(list))
	}

	views, err := svc.AppointmentViews(ctx, list)
	if err != nil {
		t.Fatalf("AppointmentViews returned error: %v", err)
	}
	if views[0].TeacherName != UnknownName {
		t.Errorf("TeacherName = %q, want %q", views[0].TeacherName, UnknownName)
	}
	if views[0].StudentName != "Alice Wilson" {
		t.Errorf("StudentName = %q, want Alice Wilson", views[0].StudentName)
	}
	if views[1].TeacherName != "Prof. Sarah Johnson" {
		t.Errorf("TeacherName = %q, want Prof. Sarah Johnson", views[1].TeacherName)
	}
}

func TestService_InboxViews(t *testing.T) {
	ctx := context.Background()
	svc, stores := newSeededService(t)

	inbox, _ := stores.Messages.ListByReceiverID(ctx, seed.Teacher1ID)
	views, err := svc.InboxViews(ctx, inbox)
	if err != nil {
		t.Fatalf("InboxViews returned error: %v", err)
	}
	if len(views) != 1 || views[0].SenderName != "Alice Wilson" {
		t.Errorf("unexpected views: %+v", views)
	}

	stores.Users.DeleteByID(ctx, seed.Student1ID)
	views, _ = svc.InboxViews(ctx, inbox)
	if views[0].SenderName != UnknownName {
		t.Errorf("SenderName = %q, want %q", views[0].SenderName, UnknownName)
	}
}

func TestService_AppointmentViews_RepoError(t *testing.T) {
	repoErr := errors.New("boom")
	svc := NewService(&mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) { return nil, repoErr },
	}, nil)

	_, err := svc.AppointmentViews(context.Background(), []*model.Appointment{{ID: "a", StudentID: "s", TeacherID: "t"}})
	if !errors.Is(err, repoErr) {
		t.Errorf("expected wrapped repo error, got %v", err)
	}
}
