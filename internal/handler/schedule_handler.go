package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/slotbook/internal/frontdesk"
	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/report"
)

// ScheduleServiceInterface は空き時間と予約のハンドラーが必要とするサービスインターフェース。
type ScheduleServiceInterface interface {
	MyAvailability(ctx context.Context) (model.Availability, error)
	SetAvailability(ctx context.Context, days map[string]string) (model.Availability, error)
	TeacherAvailability(ctx context.Context, teacherID string) (model.Availability, error)
	TeacherDirectory(ctx context.Context, department, subject string) ([]*model.User, error)
	Book(ctx context.Context, in frontdesk.BookInput) (string, error)
	ApproveAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error)
	RejectAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error)
	Appointments(ctx context.Context) ([]report.AppointmentView, error)
}

// ScheduleHandler は空き時間と予約のHTTPハンドラー。
type ScheduleHandler struct {
	service ScheduleServiceInterface
}

// NewScheduleHandler はScheduleHandlerを生成する。
func NewScheduleHandler(service ScheduleServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

type bookRequest struct {
	TeacherID string `json:"teacher_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Purpose   string `json:"purpose"`
	Message   string `json:"message"`
}

// MyAvailability はログイン中の講師の空き時間を返す。
// GET /api/availability
func (h *ScheduleHandler) MyAvailability(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.MyAvailability(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// SetAvailability はログイン中の講師の空き時間を置き換える。
// ボディは {"monday": "09:00-12:00", ...} の形式。
// PUT /api/availability
func (h *ScheduleHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var days map[string]string
	if !decodeJSON(w, r, &days) {
		return
	}

	a, err := h.service.SetAvailability(r.Context(), days)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// TeacherAvailability は指定講師の空き時間を返す。
// GET /api/teachers/{id}/availability
func (h *ScheduleHandler) TeacherAvailability(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.TeacherAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// TeacherDirectory は学科・担当科目で講師を絞り込む。
// GET /api/teachers/directory?department=&subject=
func (h *ScheduleHandler) TeacherDirectory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.service.TeacherDirectory(r.Context(), q.Get("department"), q.Get("subject"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(list))
}

// Book は予約を申請する。
// POST /api/appointments
func (h *ScheduleHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.Book(r.Context(), frontdesk.BookInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// Approve は予約を承認する。
// POST /api/appointments/{id}/approve
func (h *ScheduleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ApproveAppointment)
}

// Reject は予約を却下する。
// POST /api/appointments/{id}/reject
func (h *ScheduleHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RejectAppointment)
}

// Cancel は予約をキャンセルする。
// POST /api/appointments/{id}/cancel
func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CancelAppointment)
}

func (h *ScheduleHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*model.Appointment, error)) {
	a, err := fn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(a))
}

// ListAppointments はログイン中の利用者の役割に応じた予約一覧を返す。
// GET /api/appointments
func (h *ScheduleHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Appointments(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentViewResponses(views))
}
