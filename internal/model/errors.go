// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, booking, directory, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeAuthFailed          = "AUTH_FAILED"
	ErrCodeAccountPending      = "ACCOUNT_PENDING"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeAppointmentNotFound = "APPOINTMENT_NOT_FOUND"
	ErrCodeMessageNotFound     = "MESSAGE_NOT_FOUND"
	ErrCodeSlotConflict        = "SLOT_CONFLICT"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotLoggedIn         = "NOT_LOGGED_IN"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidWeekday      = "INVALID_WEEKDAY"
	ErrCodeOutsideAvailability = "OUTSIDE_AVAILABILITY"
)

// IsCode はerrがcodeを持つAPIErrorかどうかを返す。
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "directory",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
	}
}

// NewAuthFailedError は認証失敗エラーを生成する。
// パスワード誤り・役割の不一致・未承認を区別しない。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "認証情報が正しくないか、アカウントが承認されていません。",
		Category: "auth",
		Action:   "メールアドレス、パスワード、ログイン種別を確認してください。",
	}
}

// NewAccountPendingError は承認待ちアカウントでのログインを通知するエラーを生成する。
func NewAccountPendingError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountPending,
		Message:  "アカウントは管理者の承認待ちです。",
		Category: "auth",
		Action:   "承認されるまでお待ちください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "directory",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewAppointmentNotFoundError は予約が見つからない場合のエラーを生成する。
func NewAppointmentNotFoundError(appointmentID string) *APIError {
	return &APIError{
		Code:     ErrCodeAppointmentNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", appointmentID),
		Category: "booking",
		Action:   "予約一覧を再読み込みしてください。",
	}
}

// NewMessageNotFoundError はメッセージが見つからない場合のエラーを生成する。
func NewMessageNotFoundError(messageID string) *APIError {
	return &APIError{
		Code:     ErrCodeMessageNotFound,
		Message:  fmt.Sprintf("指定されたメッセージが見つかりません: %s", messageID),
		Category: "messaging",
		Action:   "受信箱を再読み込みしてください。",
	}
}

// NewSlotConflictError は予約枠の重複エラーを生成する。
func NewSlotConflictError(slot Slot) *APIError {
	return &APIError{
		Code:     ErrCodeSlotConflict,
		Message:  fmt.Sprintf("この時間帯は既に予約されています: %s %s", slot.Date, slot.Time),
		Category: "booking",
		Action:   "別の日時を選択してください。",
	}
}

// NewInvalidTransitionError は予約状態の不正な遷移エラーを生成する。
func NewInvalidTransitionError(from AppointmentStatus, ev AppointmentEvent) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("%s の予約に対して %s は実行できません。", from, ev),
		Category: "booking",
		Action:   "予約の最新状態を確認してください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError(operation string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("この操作を実行する権限がありません: %s", operation),
		Category: "auth",
		Action:   "適切なアカウントでログインしてください。",
	}
}

// NewNotLoggedInError は未ログイン時のエラーを生成する。
func NewNotLoggedInError() *APIError {
	return &APIError{
		Code:     ErrCodeNotLoggedIn,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewValidationError は必須項目の欠落などの入力エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "必須項目をすべて入力してください。",
	}
}

// NewInvalidWeekdayError は登録できない曜日が指定された場合のエラーを生成する。
func NewInvalidWeekdayError(day string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidWeekday,
		Message:  fmt.Sprintf("無効な曜日です: %s", day),
		Category: "validation",
		Action:   "monday から friday のいずれかを指定してください。",
	}
}

// NewOutsideAvailabilityError は講師の空き時間外の予約エラーを生成する。
func NewOutsideAvailabilityError(date, hhmm string) *APIError {
	return &APIError{
		Code:     ErrCodeOutsideAvailability,
		Message:  fmt.Sprintf("講師の空き時間外です: %s %s", date, hhmm),
		Category: "booking",
		Action:   "講師のスケジュールを確認して日時を選択してください。",
	}
}
