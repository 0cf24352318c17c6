// Package availability は講師の週間空き時間のドメインロジックを提供する。
package availability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
)

// Service は空き時間管理のサービス層。
type Service struct {
	repo repository.AvailabilityRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.AvailabilityRepository) *Service {
	return &Service{repo: repo}
}

// Set は講師の空き時間を丸ごと置き換える。
// 曜日キーは平日のみ受け付け、時間帯の文字列は検証せずそのまま保存する。
// 値が空の曜日は空きなしとして保存しない。
func (s *Service) Set(ctx context.Context, teacherID string, days map[string]string) (model.Availability, error) {
	a := make(model.Availability, len(days))
	for day, window := range days {
		d := model.Weekday(day)
		if !d.Valid() {
			return nil, model.NewInvalidWeekdayError(day)
		}
		if window == "" {
			continue
		}
		a[d] = window
	}

	if err := s.repo.Replace(ctx, teacherID, a); err != nil {
		return nil, fmt.Errorf("空き時間の保存に失敗しました: %w", err)
	}

	slog.Info("空き時間を更新しました",
		slog.String("teacher_id", teacherID),
		slog.Int("days", len(a)),
	)
	return a, nil
}

// Get は講師の空き時間を返す。未登録の場合は空のマップを返す。
func (s *Service) Get(ctx context.Context, teacherID string) (model.Availability, error) {
	a, err := s.repo.FindByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("空き時間の取得に失敗しました: %w", err)
	}
	if a == nil {
		return model.Availability{}, nil
	}
	return a, nil
}

// Covers は指定日時が講師の空き時間内かどうかを返す。
// 日付が解析できない場合や土日の場合はfalseを返す。
func (s *Service) Covers(ctx context.Context, teacherID, date, hhmm string) (bool, error) {
	day, ok := model.WeekdayOfDate(date)
	if !ok {
		return false, nil
	}
	a, err := s.Get(ctx, teacherID)
	if err != nil {
		return false, err
	}
	return a.Covers(day, hhmm), nil
}
