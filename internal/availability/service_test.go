package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
)

type mockAvailabilityRepo struct {
	findFn    func(ctx context.Context, teacherID string) (model.Availability, error)
	replaceFn func(ctx context.Context, teacherID string, a model.Availability) error
}

func (m *mockAvailabilityRepo) FindByTeacherID(ctx context.Context, teacherID string) (model.Availability, error) {
	return m.findFn(ctx, teacherID)
}
func (m *mockAvailabilityRepo) Replace(ctx context.Context, teacherID string, a model.Availability) error {
	return m.replaceFn(ctx, teacherID, a)
}

func TestService_Get_Unset(t *testing.T) {
	svc := NewService(repository.NewMemoryAvailabilityRepo())

	a, err := svc.Get(context.Background(), "teacher1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if a == nil || len(a) != 0 {
		t.Errorf("expected empty non-nil map, got %#v", a)
	}
}

// TestService_Set は時間帯を検証せずに丸ごと置き換えることを検証する。
func TestService_Set(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryAvailabilityRepo())

	_, err := svc.Set(ctx, "teacher1", map[string]string{
		"monday":  "09:00-12:00,14:00-17:00",
		"tuesday": "17:00-09:00",
		"friday":  "",
	})
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	a, _ := svc.Get(ctx, "teacher1")
	if a[model.Tuesday] != "17:00-09:00" {
		t.Errorf("tuesday = %q, want verbatim window", a[model.Tuesday])
	}
	if _, ok := a[model.Friday]; ok {
		t.Error("empty window should be treated as unavailable")
	}

	svc.Set(ctx, "teacher1", map[string]string{"wednesday": "10:00-11:00"})
	a, _ = svc.Get(ctx, "teacher1")
	if len(a) != 1 || a[model.Wednesday] != "10:00-11:00" {
		t.Errorf("expected wholesale replace, got %#v", a)
	}
}

func TestService_Set_InvalidWeekday(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryAvailabilityRepo())
	svc.Set(ctx, "teacher1", map[string]string{"monday": "09:00-12:00"})

	_, err := svc.Set(ctx, "teacher1", map[string]string{"monday": "10:00-11:00", "saturday": "10:00-12:00"})
	if !model.IsCode(err, model.ErrCodeInvalidWeekday) {
		t.Fatalf("expected INVALID_WEEKDAY, got %v", err)
	}

	a, _ := svc.Get(ctx, "teacher1")
	if a[model.Monday] != "09:00-12:00" {
		t.Errorf("rejected update should leave map unchanged, got %q", a[model.Monday])
	}
}

func TestService_Covers(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryAvailabilityRepo())
	svc.Set(ctx, "teacher1", map[string]string{"monday": "09:00-12:00"})

	tests := []struct {
		date string
		at   string
		want bool
	}{
		{"2025-08-18", "10:00", true},
		{"2025-08-18", "12:00", false},
		{"2025-08-19", "10:00", false},
		{"2025-08-23", "10:00", false},
		{"not-a-date", "10:00", false},
	}
	for _, tt := range tests {
		got, err := svc.Covers(ctx, "teacher1", tt.date, tt.at)
		if err != nil {
			t.Fatalf("Covers returned error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Covers(%s %s) = %v, want %v", tt.date, tt.at, got, tt.want)
		}
	}
}

func TestService_RepoErrors(t *testing.T) {
	repoErr := errors.New("boom")
	svc := NewService(&mockAvailabilityRepo{
		findFn: func(ctx context.Context, teacherID string) (model.Availability, error) {
			return nil, repoErr
		},
		replaceFn: func(ctx context.Context, teacherID string, a model.Availability) error {
			return repoErr
		},
	})

	if _, err := svc.Get(context.Background(), "t"); !errors.Is(err, repoErr) {
		t.Errorf("Get: expected wrapped repo error, got %v", err)
	}
	if _, err := svc.Set(context.Background(), "t", map[string]string{"monday": "x"}); !errors.Is(err, repoErr) {
		t.Errorf("Set: expected wrapped repo error, got %v", err)
	}
}
