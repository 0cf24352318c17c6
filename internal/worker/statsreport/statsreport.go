// Package statsreport は集計値の定期スナップショットジョブを提供する。
// 名簿と予約の件数をゲージに反映し、ログに1行出力する。
package statsreport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/report"
)

// StatsSource は集計値の取得元。
type StatsSource interface {
	Stats(ctx context.Context) (report.Stats, error)
}

// Job は集計スナップショットジョブ。
type Job struct {
	source  StatsSource
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// NewJob は新しいJobを生成する。
func NewJob(source StatsSource, collector metrics.MetricsCollector, logger *slog.Logger) *Job {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{source: source, metrics: collector, logger: logger}
}

// Run は集計値を1回取得し、ゲージの更新とログ出力を行う。
func (j *Job) Run(ctx context.Context) (report.Stats, error) {
	start := time.Now()

	st, err := j.source.Stats(ctx)
	if err != nil {
		j.logger.Error("集計スナップショットの取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return report.Stats{}, fmt.Errorf("集計スナップショットの取得に失敗: %w", err)
	}

	j.metrics.SetDirectoryStats(st.TotalTeachers, st.ApprovedStudents, st.PendingStudents)
	j.metrics.SetAppointmentStats(model.AppointmentCounts{
		Total:     st.TotalAppointments,
		Pending:   st.PendingAppointments,
		Approved:  st.ApprovedAppointments,
		Cancelled: st.CancelledAppointments,
	})

	j.logger.Info("集計スナップショット",
		slog.Int("total_teachers", st.TotalTeachers),
		slog.Int("approved_students", st.ApprovedStudents),
		slog.Int("pending_students", st.PendingStudents),
		slog.Int("total_appointments", st.TotalAppointments),
		slog.Int("pending_appointments", st.PendingAppointments),
		slog.Int("approved_appointments", st.ApprovedAppointments),
		slog.Int("cancelled_appointments", st.CancelledAppointments),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return st, nil
}

// ParseSchedule はcron形式のスケジュールを検証する。
// "@every 5m" のような記述子と5フィールド形式を受け付ける。
func ParseSchedule(spec string) (cron.Schedule, error) {
	return cron.ParseStandard(spec)
}

// Start はスケジュールに従ってジョブを実行する。
// コンテキストがキャンセルされると実行中のジョブの完了を待って戻る。
func (j *Job) Start(ctx context.Context, spec string) error {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return fmt.Errorf("スケジュールの登録に失敗: %w", err)
	}
	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		_, _ = j.Run(ctx)
	}))

	j.logger.Info("集計スナップショットジョブを開始しました", slog.String("schedule", spec))

	// 起動直後に1回実行
	_, _ = j.Run(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	j.logger.Info("集計スナップショットジョブを停止しました")
	return nil
}
