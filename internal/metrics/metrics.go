// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/slotbook/internal/model"
)

// 予約作成の結果ラベル。
const (
	BookingCreated             = "created"
	BookingConflict            = "conflict"
	BookingOutsideAvailability = "outside_availability"
)

// ログイン結果ラベル。
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginPending = "pending"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordLogin(role model.Role, outcome string)
	RecordBooking(outcome string)
	RecordTransition(event model.AppointmentEvent)
	RecordAuditAction(action string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	SetDirectoryStats(teachers, approvedStudents, pendingStudents int)
	SetAppointmentStats(counts model.AppointmentCounts)
}

var _ MetricsCollector = (*Collector)(nil)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins         *prometheus.CounterVec
	bookings       *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	auditActions   *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	users          *prometheus.GaugeVec
	appointments   *prometheus.GaugeVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_logins_total",
			Help: "役割・結果別のログイン試行数",
		}, []string{"role", "outcome"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_bookings_total",
			Help: "結果別の予約作成試行数",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_appointment_transitions_total",
			Help: "操作別の予約状態遷移数",
		}, []string{"event"}),
		auditActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_audit_actions_total",
			Help: "操作別の監査ログ出力数",
		}, []string{"action"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "slotbook_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		users: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "slotbook_users",
			Help: "区分別の利用者数（最新の集計時点）",
		}, []string{"kind"}),
		appointments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "slotbook_appointments",
			Help: "ステータス別の予約数（最新の集計時点）",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.logins,
		c.bookings,
		c.transitions,
		c.auditActions,
		c.httpStatus,
		c.requestLatency,
		c.users,
		c.appointments,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(role model.Role, outcome string) {
	c.logins.WithLabelValues(string(role), outcome).Inc()
}

// RecordBooking は予約作成の結果を記録する。
func (c *Collector) RecordBooking(outcome string) {
	c.bookings.WithLabelValues(outcome).Inc()
}

// RecordTransition は予約の状態遷移を記録する。
func (c *Collector) RecordTransition(event model.AppointmentEvent) {
	c.transitions.WithLabelValues(string(event)).Inc()
}

// RecordAuditAction は監査ログの出力を記録する。
func (c *Collector) RecordAuditAction(action string) {
	c.auditActions.WithLabelValues(action).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// SetDirectoryStats は利用者数のゲージを更新する。
func (c *Collector) SetDirectoryStats(teachers, approvedStudents, pendingStudents int) {
	c.users.WithLabelValues("teacher").Set(float64(teachers))
	c.users.WithLabelValues("student_approved").Set(float64(approvedStudents))
	c.users.WithLabelValues("student_pending").Set(float64(pendingStudents))
}

// SetAppointmentStats は予約数のゲージを更新する。
func (c *Collector) SetAppointmentStats(counts model.AppointmentCounts) {
	c.appointments.WithLabelValues("total").Set(float64(counts.Total))
	c.appointments.WithLabelValues(string(model.AppointmentStatusPending)).Set(float64(counts.Pending))
	c.appointments.WithLabelValues(string(model.AppointmentStatusApproved)).Set(float64(counts.Approved))
	c.appointments.WithLabelValues(string(model.AppointmentStatusCancelled)).Set(float64(counts.Cancelled))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

var _ MetricsCollector = Nop{}

func (Nop) RecordLogin(model.Role, string) {}
func (Nop) RecordBooking(string) {}
func (Nop) RecordTransition(model.AppointmentEvent) {}
func (Nop) RecordAuditAction(string) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordRequestLatency(time.Duration) {}
func (Nop) SetDirectoryStats(int, int, int) {}
func (Nop) SetAppointmentStats(model.AppointmentCounts) {}
