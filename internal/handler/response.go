// Package handler はHTTPハンドラーを提供する。
// 表示層からの入力をfrontdeskの操作に対応付け、結果をJSONで返す。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/report"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードは含めない。
type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// sessionResponse はログイン結果のAPIレスポンス。
type sessionResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	StartedAt time.Time `json:"started_at"`
}

// appointmentResponse は予約情報のAPIレスポンス。
type appointmentResponse struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Purpose     string `json:"purpose"`
	Message     string `json:"message"`
}

// messageResponse は受信メッセージのAPIレスポンス。
type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// statsResponse は管理者ダッシュボードの集計値レスポンス。
type statsResponse struct {
	TotalTeachers         int `json:"total_teachers"`
	ApprovedStudents      int `json:"approved_students"`
	PendingStudents       int `json:"pending_students"`
	TotalAppointments     int `json:"total_appointments"`
	PendingAppointments   int `json:"pending_appointments"`
	ApprovedAppointments  int `json:"approved_appointments"`
	CancelledAppointments int `json:"cancelled_appointments"`
}

// idResponse は作成されたリソースのIDを返すレスポンス。
type idResponse struct {
	ID string `json:"id"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Role:       string(u.Role),
		Name:       u.Name,
		Phone:      u.Phone,
		Department: u.Department,
		Subject:    u.Subject,
		Approved:   u.Approved,
		CreatedAt:  u.CreatedAt,
	}
}

func toUserResponses(users []*model.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toAppointmentResponse(a *model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		StudentID: a.StudentID,
		TeacherID: a.TeacherID,
		Date:      a.Date,
		Time:      a.Time,
		Status:    string(a.Status),
		Purpose:   a.Purpose,
		Message:   a.Message,
	}
}

func toAppointmentViewResponses(views []report.AppointmentView) []appointmentResponse {
	out := make([]appointmentResponse, len(views))
	for i, v := range views {
		resp := toAppointmentResponse(&v.Appointment)
		resp.StudentName = v.StudentName
		resp.TeacherName = v.TeacherName
		out[i] = resp
	}
	return out
}

func toMessageResponses(views []report.MessageView) []messageResponse {
	out := make([]messageResponse, len(views))
	for i, v := range views {
		out[i] = messageResponse{
			ID:         v.ID,
			SenderID:   v.SenderID,
			SenderName: v.SenderName,
			Content:    v.Content,
			Timestamp:  v.Timestamp,
			Read:       v.Read,
		}
	}
	return out
}

func toStatsResponse(s report.Stats) statsResponse {
	return statsResponse(s)
}

// --- ヘルパー関数 ---

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON はリクエストボディをデコードする。失敗した場合は400を書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return false
	}
	return true
}

// requireConfirm は削除操作に?confirm=trueが付いているかを確認する。
// 付いていない場合は400を書き込みfalseを返す。
func requireConfirm(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") == "true" {
		return true
	}
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "CONFIRMATION_REQUIRED",
		Message:  "削除には確認が必要です。",
		Category: "validation",
		Action:   "確認のうえ?confirm=trueを付けて再度実行してください。",
	})
	return false
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeDuplicateEmail, model.ErrCodeSlotConflict, model.ErrCodeInvalidTransition:
		return http.StatusConflict
	case model.ErrCodeAuthFailed, model.ErrCodeNotLoggedIn:
		return http.StatusUnauthorized
	case model.ErrCodeAccountPending, model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodeAppointmentNotFound, model.ErrCodeMessageNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidWeekday, model.ErrCodeOutsideAvailability:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
