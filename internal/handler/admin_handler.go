package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/slotbook/internal/frontdesk"
	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/report"
)

// AdminServiceInterface は管理者ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	Teachers(ctx context.Context) ([]*model.User, error)
	CreateTeacher(ctx context.Context, in frontdesk.TeacherInput) (string, error)
	UpdateTeacher(ctx context.Context, teacherID string, update model.ProfileUpdate) (*model.User, error)
	DeleteTeacher(ctx context.Context, teacherID string) error
	Students(ctx context.Context) ([]*model.User, error)
	ApproveStudent(ctx context.Context, studentID string) (*model.User, error)
	DeleteStudent(ctx context.Context, studentID string) error
	DeleteAppointment(ctx context.Context, appointmentID string) error
	Stats(ctx context.Context) (report.Stats, error)
}

// AdminHandler は名簿管理と集計のHTTPハンドラー。
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

type teacherRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Subject    string `json:"subject"`
}

// updateTeacherRequest は講師の部分更新リクエスト。省略したフィールドは変更しない。
type updateTeacherRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
	Subject    *string `json:"subject"`
}

// ListTeachers は全講師を返す。
// GET /api/teachers
func (h *AdminHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Teachers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(list))
}

// CreateTeacher は講師を登録する。
// POST /api/teachers
func (h *AdminHandler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req teacherRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.CreateTeacher(r.Context(), frontdesk.TeacherInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// UpdateTeacher は講師のプロフィールを部分更新する。
// PUT /api/teachers/{id}
func (h *AdminHandler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req updateTeacherRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.service.UpdateTeacher(r.Context(), chi.URLParam(r, "id"), model.ProfileUpdate(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// DeleteTeacher は講師を削除する。
// DELETE /api/teachers/{id}?confirm=true
func (h *AdminHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	if !requireConfirm(w, r) {
		return
	}
	if err := h.service.DeleteTeacher(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStudents は承認状態を含む全学生を返す。
// GET /api/students
func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Students(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(list))
}

// ApproveStudent は学生を承認する。
// POST /api/students/{id}/approve
func (h *AdminHandler) ApproveStudent(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.ApproveStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// DeleteStudent は学生を削除する。
// DELETE /api/students/{id}?confirm=true
func (h *AdminHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if !requireConfirm(w, r) {
		return
	}
	if err := h.service.DeleteStudent(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAppointment は予約を削除する。
// DELETE /api/appointments/{id}?confirm=true
func (h *AdminHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if !requireConfirm(w, r) {
		return
	}
	if err := h.service.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats は管理者ダッシュボードの集計値を返す。
// GET /api/reports/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(st))
}
