// Package model はドメインモデルを定義する。
package model

import "time"

// AppointmentStatus は予約の状態を表す。
type AppointmentStatus string

const (
	// AppointmentStatusPending は講師の承認待ち。
	AppointmentStatusPending AppointmentStatus = "pending"
	// AppointmentStatusApproved は講師が承認済み。
	AppointmentStatusApproved AppointmentStatus = "approved"
	// AppointmentStatusCancelled は却下またはキャンセル済み。以降の遷移はない。
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentEvent は予約の状態遷移を引き起こす操作を表す。
type AppointmentEvent string

const (
	// EventApprove は講師による承認。
	EventApprove AppointmentEvent = "approve"
	// EventReject は講師による却下。承認済みの予約の取り消しにも使う。
	EventReject AppointmentEvent = "reject"
	// EventCancel は学生によるキャンセル。
	EventCancel AppointmentEvent = "cancel"
)

// appointmentTransitions は状態遷移表。
// 表にない組み合わせは不正な遷移として扱う。
var appointmentTransitions = map[AppointmentStatus]map[AppointmentEvent]AppointmentStatus{
	AppointmentStatusPending: {
		EventApprove: AppointmentStatusApproved,
		EventReject:  AppointmentStatusCancelled,
		EventCancel:  AppointmentStatusCancelled,
	},
	AppointmentStatusApproved: {
		EventReject: AppointmentStatusCancelled,
		EventCancel: AppointmentStatusCancelled,
	},
}

// Next は現在の状態にイベントを適用した遷移先を返す。
// 遷移できない場合はfalseを返す。
func (s AppointmentStatus) Next(ev AppointmentEvent) (AppointmentStatus, bool) {
	next, ok := appointmentTransitions[s][ev]
	return next, ok
}

// Active はスロットを占有する状態（cancelled以外）かどうかを返す。
func (s AppointmentStatus) Active() bool {
	return s != AppointmentStatusCancelled
}

// Appointment は学生から講師への面談予約を表す。
// Date は "2006-01-02"、Time は "15:04" 形式の文字列で保持する。
type Appointment struct {
	ID        string
	StudentID string
	TeacherID string
	Date      string
	Time      string
	Status    AppointmentStatus
	Purpose   string
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot は予約枠 (teacherID, date, time) を表す。
// 非キャンセルの予約の間で一意でなければならない。
type Slot struct {
	TeacherID string
	Date      string
	Time      string
}

// Slot は予約が占有する枠を返す。
func (a *Appointment) Slot() Slot {
	return Slot{TeacherID: a.TeacherID, Date: a.Date, Time: a.Time}
}

// AppointmentCounts はステータス別の予約件数。
type AppointmentCounts struct {
	Total     int
	Pending   int
	Approved  int
	Cancelled int
}
