// Package repository はデータ保持のインターフェースとインメモリ実装を定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/slotbook/internal/model"
)

// ErrNotFound は更新・削除対象のレコードが存在しない場合に返す。
// 検索系メソッドは見つからない場合にnilを返し、このエラーは使わない。
var ErrNotFound = errors.New("record not found")

// UserRepository はユーザーデータの保持インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateIfEmailFree はメールアドレスが未使用の場合のみユーザーを作成する。
	// 重複チェックと追加は1つの排他区間で行う。重複時はfalseを返す。
	CreateIfEmailFree(ctx context.Context, user *model.User) (bool, error)

	// Mutate は指定IDのユーザーに排他区間内でfnを適用して保存する。
	// fnがエラーを返した場合は変更を破棄してそのエラーを返す。
	// 見つからない場合はErrNotFoundを返す。
	Mutate(ctx context.Context, id string, fn func(u *model.User) error) (*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。見つからない場合はErrNotFoundを返す。
	// 関連する予約・メッセージ・空き時間は削除しない。
	DeleteByID(ctx context.Context, id string) error

	// List は条件に一致するユーザーを登録順で返す。
	List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
}

// AvailabilityRepository は講師の空き時間の保持インターフェース。
type AvailabilityRepository interface {
	// FindByTeacherID は講師の空き時間を取得する。未登録の場合はnilを返す。
	FindByTeacherID(ctx context.Context, teacherID string) (model.Availability, error)

	// Replace は講師の空き時間を丸ごと置き換える。
	Replace(ctx context.Context, teacherID string, availability model.Availability) error
}

// AppointmentRepository は予約データの保持インターフェース。
type AppointmentRepository interface {
	// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Appointment, error)

	// CreateIfSlotFree は同じ枠に非キャンセルの予約が無い場合のみ予約を作成する。
	// 重複チェックと追加は1つの排他区間で行う。重複時はfalseを返す。
	CreateIfSlotFree(ctx context.Context, appointment *model.Appointment) (bool, error)

	// Mutate は指定IDの予約に排他区間内でfnを適用して保存する。
	// fnがエラーを返した場合は変更を破棄してそのエラーを返す。
	// 見つからない場合はErrNotFoundを返す。
	Mutate(ctx context.Context, id string, fn func(a *model.Appointment) error) (*model.Appointment, error)

	// DeleteByID は指定IDの予約を削除する。見つからない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error

	// ListAll は全予約を登録順で返す。
	ListAll(ctx context.Context) ([]*model.Appointment, error)

	// ListByStudentID は学生の予約を登録順で返す。
	ListByStudentID(ctx context.Context, studentID string) ([]*model.Appointment, error)

	// ListByTeacherID は講師宛ての予約を登録順で返す。
	ListByTeacherID(ctx context.Context, teacherID string) ([]*model.Appointment, error)

	// CountByStatus はステータス別の予約件数を返す。
	CountByStatus(ctx context.Context) (model.AppointmentCounts, error)
}

// MessageRepository はメッセージの保持インターフェース。
type MessageRepository interface {
	// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Message, error)

	// Create はメッセージを追加する。
	Create(ctx context.Context, message *model.Message) error

	// ListByReceiverID は受信者宛てのメッセージを送信日時の昇順で返す。
	// 同時刻の場合は登録順を維持する。
	ListByReceiverID(ctx context.Context, receiverID string) ([]*model.Message, error)

	// MarkRead はメッセージを既読にする。見つからない場合はErrNotFoundを返す。
	MarkRead(ctx context.Context, id string) error
}
