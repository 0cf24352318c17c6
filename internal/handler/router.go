package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionSource     middleware.SessionSource
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	Gatherer          prometheus.Gatherer
	Logger            *slog.Logger

	// 画面操作
	SessionService  SessionServiceInterface
	AdminService    AdminServiceInterface
	ScheduleService ScheduleServiceInterface
	MessageService  MessageServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → SessionGate → RateLimit(General)
//
// /health、/metrics、ログインと学生の自己登録はセッションゲートの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	sessionHandler := NewSessionHandler(deps.SessionService)
	adminHandler := NewAdminHandler(deps.AdminService)
	scheduleHandler := NewScheduleHandler(deps.ScheduleService)
	messageHandler := NewMessageHandler(deps.MessageService)

	// --- セッション不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/api/session/login", sessionHandler.Login)
		r.Post("/api/students/register", sessionHandler.Register)
	})

	// --- セッションが必要なルート ---
	// ミドルウェアスタック: SessionGate → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionGate(deps.SessionSource))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/session/logout", sessionHandler.Logout)
		r.Get("/api/me", sessionHandler.Me)

		// 講師
		r.Route("/api/teachers", func(r chi.Router) {
			r.Get("/", adminHandler.ListTeachers)
			r.Post("/", adminHandler.CreateTeacher)
			r.Get("/directory", scheduleHandler.TeacherDirectory)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", adminHandler.UpdateTeacher)
				r.Delete("/", adminHandler.DeleteTeacher)
				r.Get("/availability", scheduleHandler.TeacherAvailability)
			})
		})

		// 学生
		// 自己登録と同じ接頭辞のためサブルーターにはしない
		r.Get("/api/students", adminHandler.ListStudents)
		r.Post("/api/students/{id}/approve", adminHandler.ApproveStudent)
		r.Delete("/api/students/{id}", adminHandler.DeleteStudent)

		// 空き時間
		r.Get("/api/availability", scheduleHandler.MyAvailability)
		r.Put("/api/availability", scheduleHandler.SetAvailability)

		// 予約
		r.Route("/api/appointments", func(r chi.Router) {
			r.Get("/", scheduleHandler.ListAppointments)
			r.Post("/", scheduleHandler.Book)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", adminHandler.DeleteAppointment)
				r.Post("/approve", scheduleHandler.Approve)
				r.Post("/reject", scheduleHandler.Reject)
				r.Post("/cancel", scheduleHandler.Cancel)
			})
		})

		// メッセージ
		r.Route("/api/messages", func(r chi.Router) {
			r.Post("/", messageHandler.Send)
			r.Get("/inbox", messageHandler.Inbox)
			r.Post("/{id}/read", messageHandler.MarkRead)
		})

		r.Get("/api/reports/stats", adminHandler.Stats)
	})

	return r
}
