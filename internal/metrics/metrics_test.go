package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/hitoshi/slotbook/internal/model"
)

// findMetric は名前とラベルが一致するメトリクスを返す。見つからない場合はnilを返す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	if c := NewCollector(reg); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordLogin_CountsByRoleAndOutcome はログイン試行が役割と結果のラベル付きで増加することを検証する。
func TestRecordLogin_CountsByRoleAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(model.RoleStudent, LoginSuccess)
	c.RecordLogin(model.RoleStudent, LoginSuccess)
	c.RecordLogin(model.RoleStudent, LoginPending)

	m := findMetric(t, reg, "slotbook_logins_total", map[string]string{"role": "student", "outcome": "success"})
	if m == nil {
		t.Fatal("slotbook_logins_total{role=student,outcome=success} not found")
	}
	if v := m.GetCounter().GetValue(); v != 2 {
		t.Errorf("logins_total = %v, want 2", v)
	}

	m = findMetric(t, reg, "slotbook_logins_total", map[string]string{"role": "student", "outcome": "pending"})
	if m == nil || m.GetCounter().GetValue() != 1 {
		t.Errorf("pending logins metric = %v, want 1", m)
	}
}

// TestRecordBooking_CountsByOutcome は予約作成の結果別カウンタを検証する。
func TestRecordBooking_CountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBooking(BookingCreated)
	c.RecordBooking(BookingConflict)
	c.RecordBooking(BookingConflict)

	m := findMetric(t, reg, "slotbook_bookings_total", map[string]string{"outcome": "conflict"})
	if m == nil {
		t.Fatal("slotbook_bookings_total{outcome=conflict} not found")
	}
	if v := m.GetCounter().GetValue(); v != 2 {
		t.Errorf("bookings_total{conflict} = %v, want 2", v)
	}
}

func TestRecordTransitionAndAudit(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTransition(model.EventApprove)
	c.RecordAuditAction("Appointment approved")

	if m := findMetric(t, reg, "slotbook_appointment_transitions_total", map[string]string{"event": "approve"}); m == nil || m.GetCounter().GetValue() != 1 {
		t.Errorf("transitions_total{approve} = %v, want 1", m)
	}
	if m := findMetric(t, reg, "slotbook_audit_actions_total", map[string]string{"action": "Appointment approved"}); m == nil || m.GetCounter().GetValue() != 1 {
		t.Errorf("audit_actions_total = %v, want 1", m)
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(409)

	if m := findMetric(t, reg, "slotbook_http_status_total", map[string]string{"status_code": "200"}); m == nil || m.GetCounter().GetValue() != 2 {
		t.Errorf("http_status_total{200} = %v, want 2", m)
	}
	if m := findMetric(t, reg, "slotbook_http_status_total", map[string]string{"status_code": "409"}); m == nil || m.GetCounter().GetValue() != 1 {
		t.Errorf("http_status_total{409} = %v, want 1", m)
	}
}

// TestRecordRequestLatency_ObservesHistogram はレイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency(100 * time.Millisecond)
	c.RecordRequestLatency(2 * time.Second)

	m := findMetric(t, reg, "slotbook_http_request_duration_seconds", nil)
	if m == nil {
		t.Fatal("slotbook_http_request_duration_seconds not found")
	}
	h := m.GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
	}
	// 合計は0.1 + 2.0 = 2.1秒
	if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
		t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
	}
}

// TestSetStats_UpdatesGauges は集計ゲージが最新値で上書きされることを検証する。
func TestSetStats_UpdatesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetDirectoryStats(2, 1, 5)
	c.SetDirectoryStats(2, 3, 1)
	c.SetAppointmentStats(model.AppointmentCounts{Total: 4, Pending: 1, Approved: 2, Cancelled: 1})

	if m := findMetric(t, reg, "slotbook_users", map[string]string{"kind": "student_pending"}); m == nil || m.GetGauge().GetValue() != 1 {
		t.Errorf("users{student_pending} = %v, want 1", m)
	}
	if m := findMetric(t, reg, "slotbook_appointments", map[string]string{"status": "approved"}); m == nil || m.GetGauge().GetValue() != 2 {
		t.Errorf("appointments{approved} = %v, want 2", m)
	}
	if m := findMetric(t, reg, "slotbook_appointments", map[string]string{"status": "total"}); m == nil || m.GetGauge().GetValue() != 4 {
		t.Errorf("appointments{total} = %v, want 4", m)
	}
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordBooking(BookingCreated)
	c2.RecordBooking(BookingCreated)
	c2.RecordBooking(BookingCreated)

	m1 := findMetric(t, reg1, "slotbook_bookings_total", map[string]string{"outcome": "created"})
	m2 := findMetric(t, reg2, "slotbook_bookings_total", map[string]string{"outcome": "created"})
	if m1.GetCounter().GetValue() != 1 {
		t.Errorf("reg1 bookings = %v, want 1", m1.GetCounter().GetValue())
	}
	if m2.GetCounter().GetValue() != 2 {
		t.Errorf("reg2 bookings = %v, want 2", m2.GetCounter().GetValue())
	}
}
