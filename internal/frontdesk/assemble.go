package frontdesk

import (
	"log/slog"

	"github.com/hitoshi/slotbook/internal/appointment"
	"github.com/hitoshi/slotbook/internal/audit"
	"github.com/hitoshi/slotbook/internal/availability"
	"github.com/hitoshi/slotbook/internal/directory"
	"github.com/hitoshi/slotbook/internal/messaging"
	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/report"
	"github.com/hitoshi/slotbook/internal/security"
	"github.com/hitoshi/slotbook/internal/seed"
	"github.com/hitoshi/slotbook/internal/session"
)

// Options はAssembleで組み立てるサービス群の設定。
type Options struct {
	Config
	EnforceAvailability    bool
	DefaultTeacherPassword string
	Metrics                metrics.MetricsCollector
	AuditLogger            *slog.Logger
}

// Assemble はストア一式から各サービスを生成してDeskを組み立てる。
func Assemble(stores seed.Stores, opts Options) *Desk {
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}
	sanitizer := security.NewTextSanitizer()

	dir := directory.NewService(stores.Users, opts.DefaultTeacherPassword)
	avail := availability.NewService(stores.Availability)

	return New(Deps{
		Session:      session.NewManager(dir),
		Directory:    dir,
		Availability: avail,
		Appointments: appointment.NewService(stores.Appointments, avail, collector, appointment.ServiceConfig{
			EnforceAvailability: opts.EnforceAvailability,
		}),
		Messages:  messaging.NewService(stores.Messages, sanitizer),
		Reports:   report.NewService(stores.Users, stores.Appointments),
		Sanitizer: sanitizer,
		Audit:     audit.NewLogger(opts.AuditLogger, collector),
		Metrics:   collector,
	}, opts.Config)
}
