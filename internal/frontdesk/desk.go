// Package frontdesk は表示層から呼ばれる操作の入口を提供する。
// アクティブセッションと各サービスを保持し、役割による制限、所有者の確認、
// 監査ログの出力をまとめて行う。
package frontdesk

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/slotbook/internal/appointment"
	"github.com/hitoshi/slotbook/internal/audit"
	"github.com/hitoshi/slotbook/internal/availability"
	"github.com/hitoshi/slotbook/internal/directory"
	"github.com/hitoshi/slotbook/internal/messaging"
	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/report"
	"github.com/hitoshi/slotbook/internal/security"
	"github.com/hitoshi/slotbook/internal/session"
)

// Deps はDeskが利用するサービス群。
type Deps struct {
	Session      *session.Manager
	Directory    *directory.Service
	Availability *availability.Service
	Appointments *appointment.Service
	Messages     *messaging.Service
	Reports      *report.Service
	Sanitizer    security.TextSanitizer
	Audit        audit.Recorder
	Metrics      metrics.MetricsCollector
}

// Config はDeskの動作設定。
type Config struct {
	// SimulatedDelay はログインと登録の結果を返す前に待つ時間。
	// 待機は取り消せず、結果は必ず1回だけ返る。
	SimulatedDelay time.Duration
}

// Desk は表示層に対する唯一の操作窓口。
type Desk struct {
	session      *session.Manager
	directory    *directory.Service
	availability *availability.Service
	appointments *appointment.Service
	messages     *messaging.Service
	reports      *report.Service
	sanitizer    security.TextSanitizer
	audit        audit.Recorder
	metrics      metrics.MetricsCollector
	validate     *validator.Validate
	config       Config
}

// New はDeskを生成する。
func New(deps Deps, config Config) *Desk {
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = security.NewTextSanitizer()
	}
	return &Desk{
		session:      deps.Session,
		directory:    deps.Directory,
		availability: deps.Availability,
		appointments: deps.Appointments,
		messages:     deps.Messages,
		reports:      deps.Reports,
		sanitizer:    sanitizer,
		audit:        deps.Audit,
		metrics:      collector,
		validate:     newValidator(),
		config:       config,
	}
}

func (d *Desk) check(in any) error {
	if err := d.validate.Struct(in); err != nil {
		return toValidationError(err)
	}
	return nil
}

// pause は設定された待機時間だけ処理を止める。
func (d *Desk) pause() {
	if d.config.SimulatedDelay > 0 {
		time.Sleep(d.config.SimulatedDelay)
	}
}

// record は操作者を現在のセッションから補って監査ログを出力する。
func (d *Desk) record(ctx context.Context, action, detail string) {
	if d.audit == nil {
		return
	}
	e := audit.Entry{Action: action, Detail: detail, At: time.Now()}
	if s, ok := d.session.Current(); ok {
		e.Actor = s.Name
		e.Role = s.Role
	}
	d.audit.Record(ctx, e)
}

// recordAnonymous はセッションの有無にかかわらず未ログインの操作者として監査ログを出力する。
func (d *Desk) recordAnonymous(ctx context.Context, action, detail string) {
	if d.audit == nil {
		return
	}
	d.audit.Record(ctx, audit.Entry{Action: action, Detail: detail, At: time.Now()})
}

// --- セッション ---

// Login は資格情報を照合してアクティブセッションを開始する。
// 資格情報が未承認の学生アカウントに一致する場合はAccountPendingErrorを返す。
func (d *Desk) Login(ctx context.Context, in LoginInput) (*model.Session, error) {
	if err := d.check(in); err != nil {
		return nil, err
	}
	d.pause()

	s, err := d.session.Login(ctx, in.Email, in.Password, in.Role)
	if err != nil {
		if !model.IsCode(err, model.ErrCodeAuthFailed) {
			return nil, err
		}
		d.recordAnonymous(ctx, audit.ActionLoginFailed, fmt.Sprintf("Email: %s, Role: %s", in.Email, in.Role))
		pending, perr := d.directory.IsPendingApproval(ctx, in.Email, in.Password, in.Role)
		if perr != nil {
			return nil, perr
		}
		if pending {
			d.metrics.RecordLogin(in.Role, metrics.LoginPending)
			return nil, model.NewAccountPendingError()
		}
		d.metrics.RecordLogin(in.Role, metrics.LoginFailure)
		return nil, err
	}

	d.metrics.RecordLogin(s.Role, metrics.LoginSuccess)
	d.record(ctx, audit.ActionLoginSucceeded, fmt.Sprintf("User: %s, Role: %s", s.Email, s.Role))
	return s, nil
}

// Logout はアクティブセッションを終了する。
func (d *Desk) Logout(ctx context.Context) error {
	s, err := d.session.Require("ログアウト")
	if err != nil {
		return err
	}
	d.record(ctx, audit.ActionLogout, fmt.Sprintf("User: %s", s.Email))
	d.session.Logout()
	return nil
}

// Current はアクティブセッションのコピーを返す。
func (d *Desk) Current() (*model.Session, bool) {
	return d.session.Current()
}

// Me はログイン中の利用者を返す。
func (d *Desk) Me(ctx context.Context) (*model.User, error) {
	s, err := d.session.Require("利用者情報の参照")
	if err != nil {
		return nil, err
	}
	return d.directory.Get(ctx, s.UserID)
}

// --- 名簿 ---

// RegisterStudent は学生を未承認状態で登録する。ログインは不要。
func (d *Desk) RegisterStudent(ctx context.Context, in RegisterInput) (string, error) {
	if err := d.check(in); err != nil {
		return "", err
	}
	d.pause()

	id, err := d.directory.RegisterStudent(ctx, directory.StudentRegistration{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		Password:   in.Password,
	})
	if err != nil {
		return "", err
	}
	d.recordAnonymous(ctx, audit.ActionStudentRegistered, fmt.Sprintf("New user: %s (%s)", in.Name, in.Email))
	return id, nil
}

// CreateTeacher は講師を登録する。管理者のみ。
func (d *Desk) CreateTeacher(ctx context.Context, in TeacherInput) (string, error) {
	if _, err := d.session.Require("講師の登録", model.RoleAdmin); err != nil {
		return "", err
	}
	if err := d.check(in); err != nil {
		return "", err
	}

	id, err := d.directory.CreateTeacher(ctx, directory.TeacherProfile{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		Subject:    in.Subject,
	})
	if err != nil {
		return "", err
	}
	d.record(ctx, audit.ActionTeacherCreated, fmt.Sprintf("Name: %s, Email: %s", in.Name, in.Email))
	return id, nil
}

// UpdateTeacher は講師のプロフィールを部分更新する。管理者のみ。
func (d *Desk) UpdateTeacher(ctx context.Context, teacherID string, update model.ProfileUpdate) (*model.User, error) {
	if _, err := d.session.Require("講師の編集", model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := d.check(TeacherUpdateInput(update)); err != nil {
		return nil, err
	}
	if _, err := d.userWithRole(ctx, teacherID, model.RoleTeacher); err != nil {
		return nil, err
	}

	u, err := d.directory.Update(ctx, teacherID, update)
	if err != nil {
		return nil, err
	}
	d.record(ctx, audit.ActionTeacherUpdated, fmt.Sprintf("Name: %s, Email: %s", u.Name, u.Email))
	return u, nil
}

// DeleteTeacher は講師を削除する。管理者のみ。確認は表示層が行う。
func (d *Desk) DeleteTeacher(ctx context.Context, teacherID string) error {
	return d.deleteUser(ctx, teacherID, model.RoleTeacher, audit.ActionTeacherDeleted)
}

// DeleteStudent は学生を削除する。管理者のみ。確認は表示層が行う。
func (d *Desk) DeleteStudent(ctx context.Context, studentID string) error {
	return d.deleteUser(ctx, studentID, model.RoleStudent, audit.ActionStudentDeleted)
}

func (d *Desk) deleteUser(ctx context.Context, userID string, role model.Role, action string) error {
	if _, err := d.session.Require("利用者の削除", model.RoleAdmin); err != nil {
		return err
	}
	u, err := d.userWithRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if err := d.directory.Delete(ctx, userID); err != nil {
		return err
	}
	d.session.EndIfUser(userID)
	d.record(ctx, action, fmt.Sprintf("Name: %s, Email: %s", u.Name, u.Email))
	return nil
}

// ApproveStudent は学生を承認する。管理者のみ。
func (d *Desk) ApproveStudent(ctx context.Context, studentID string) (*model.User, error) {
	if _, err := d.session.Require("学生の承認", model.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := d.userWithRole(ctx, studentID, model.RoleStudent); err != nil {
		return nil, err
	}

	u, err := d.directory.Approve(ctx, studentID)
	if err != nil {
		return nil, err
	}
	d.record(ctx, audit.ActionStudentApproved, fmt.Sprintf("Name: %s, Email: %s", u.Name, u.Email))
	return u, nil
}

// Teachers は全講師を返す。管理者のみ。
func (d *Desk) Teachers(ctx context.Context) ([]*model.User, error) {
	if _, err := d.session.Require("講師一覧の参照", model.RoleAdmin); err != nil {
		return nil, err
	}
	return d.directory.List(ctx, model.UserFilter{Role: model.RoleTeacher})
}

// Students は承認状態を含む全学生を返す。管理者のみ。
func (d *Desk) Students(ctx context.Context) ([]*model.User, error) {
	if _, err := d.session.Require("学生一覧の参照", model.RoleAdmin); err != nil {
		return nil, err
	}
	return d.directory.List(ctx, model.UserFilter{Role: model.RoleStudent})
}

// TeacherDirectory は予約画面向けに講師を絞り込む。
func (d *Desk) TeacherDirectory(ctx context.Context, department, subject string) ([]*model.User, error) {
	if _, err := d.session.Require("講師の検索", model.RoleStudent, model.RoleAdmin); err != nil {
		return nil, err
	}
	return d.reports.TeacherDirectory(ctx, department, subject)
}

// Stats は管理者ダッシュボードの集計値を返す。
func (d *Desk) Stats(ctx context.Context) (report.Stats, error) {
	if _, err := d.session.Require("集計の参照", model.RoleAdmin); err != nil {
		return report.Stats{}, err
	}
	return d.reports.Stats(ctx)
}

// userWithRole は指定IDのユーザーが期待する役割であることを確認する。
// 役割が異なる場合は存在しないものとして扱う。
func (d *Desk) userWithRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	u, err := d.directory.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, model.NewUserNotFoundError(userID)
	}
	return u, nil
}

// --- 空き時間 ---

// MyAvailability はログイン中の講師の空き時間を返す。編集フォームの初期値に使う。
func (d *Desk) MyAvailability(ctx context.Context) (model.Availability, error) {
	s, err := d.session.Require("空き時間の参照", model.RoleTeacher)
	if err != nil {
		return nil, err
	}
	return d.availability.Get(ctx, s.UserID)
}

// SetAvailability はログイン中の講師の空き時間を丸ごと置き換える。
func (d *Desk) SetAvailability(ctx context.Context, days map[string]string) (model.Availability, error) {
	s, err := d.session.Require("空き時間の登録", model.RoleTeacher)
	if err != nil {
		return nil, err
	}
	a, err := d.availability.Set(ctx, s.UserID, days)
	if err != nil {
		return nil, err
	}
	d.record(ctx, audit.ActionAvailabilityUpdated, fmt.Sprintf("Days configured: %d", len(a)))
	return a, nil
}

// TeacherAvailability は指定講師の空き時間を返す。
func (d *Desk) TeacherAvailability(ctx context.Context, teacherID string) (model.Availability, error) {
	if _, err := d.session.Require("空き時間の参照"); err != nil {
		return nil, err
	}
	if _, err := d.userWithRole(ctx, teacherID, model.RoleTeacher); err != nil {
		return nil, err
	}
	return d.availability.Get(ctx, teacherID)
}

// --- 予約 ---

// Book はログイン中の学生として予約を申請する。
// 目的と連絡事項はHTMLタグを除去して保存する。タグに見える文字列も除去されるため、
// 保存内容は入力と一致しない場合がある。
func (d *Desk) Book(ctx context.Context, in BookInput) (string, error) {
	s, err := d.session.Require("予約の申請", model.RoleStudent)
	if err != nil {
		return "", err
	}
	in.Purpose = d.sanitizer.Sanitize(in.Purpose)
	in.Message = d.sanitizer.Sanitize(in.Message)
	if err := d.check(in); err != nil {
		return "", err
	}
	teacher, err := d.userWithRole(ctx, in.TeacherID, model.RoleTeacher)
	if err != nil {
		return "", err
	}

	id, err := d.appointments.Book(ctx, appointment.BookingRequest{
		StudentID: s.UserID,
		TeacherID: in.TeacherID,
		Date:      in.Date,
		Time:      in.Time,
		Purpose:   in.Purpose,
		Message:   in.Message,
	})
	if err != nil {
		return "", err
	}
	d.record(ctx, audit.ActionAppointmentBooked, fmt.Sprintf("Teacher: %s, Date: %s, Time: %s", teacher.Name, in.Date, in.Time))
	return id, nil
}

// ApproveAppointment は自分宛ての予約を承認する。講師のみ。
func (d *Desk) ApproveAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	a, err := d.ownedByTeacher(ctx, appointmentID, "予約の承認")
	if err != nil {
		return nil, err
	}
	updated, err := d.appointments.Approve(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	d.record(ctx, audit.ActionAppointmentApproved, fmt.Sprintf("Student: %s, Date: %s", d.nameOf(ctx, a.StudentID), a.Date))
	return updated, nil
}

// RejectAppointment は自分宛ての予約を却下する。講師のみ。
func (d *Desk) RejectAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	a, err := d.ownedByTeacher(ctx, appointmentID, "予約の却下")
	if err != nil {
		return nil, err
	}
	updated, err := d.appointments.Reject(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	d.record(ctx, audit.ActionAppointmentRejected, fmt.Sprintf("Student: %s, Date: %s", d.nameOf(ctx, a.StudentID), a.Date))
	return updated, nil
}

// CancelAppointment は自分の予約をキャンセルする。学生のみ。
func (d *Desk) CancelAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	s, err := d.session.Require("予約のキャンセル", model.RoleStudent)
	if err != nil {
		return nil, err
	}
	a, err := d.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.StudentID != s.UserID {
		return nil, model.NewForbiddenError("予約のキャンセル")
	}
	updated, err := d.appointments.Cancel(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	d.record(ctx, audit.ActionAppointmentCanceled, fmt.Sprintf("Date: %s, Time: %s", a.Date, a.Time))
	return updated, nil
}

// DeleteAppointment は予約を削除する。管理者のみ。確認は表示層が行う。
func (d *Desk) DeleteAppointment(ctx context.Context, appointmentID string) error {
	if _, err := d.session.Require("予約の削除", model.RoleAdmin); err != nil {
		return err
	}
	if err := d.appointments.Delete(ctx, appointmentID); err != nil {
		return err
	}
	d.record(ctx, audit.ActionAppointmentDeleted, fmt.Sprintf("ID: %s", appointmentID))
	return nil
}

// Appointments はログイン中の利用者の役割に応じた予約一覧を返す。
func (d *Desk) Appointments(ctx context.Context) ([]report.AppointmentView, error) {
	s, err := d.session.Require("予約一覧の参照")
	if err != nil {
		return nil, err
	}
	list, err := d.appointments.ListFor(ctx, s.UserID, s.Role)
	if err != nil {
		return nil, err
	}
	return d.reports.AppointmentViews(ctx, list)
}

// ownedByTeacher はログイン中の講師宛ての予約であることを確認して返す。
func (d *Desk) ownedByTeacher(ctx context.Context, appointmentID, operation string) (*model.Appointment, error) {
	s, err := d.session.Require(operation, model.RoleTeacher)
	if err != nil {
		return nil, err
	}
	a, err := d.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.TeacherID != s.UserID {
		return nil, model.NewForbiddenError(operation)
	}
	return a, nil
}

// nameOf は監査ログ用にユーザー名を解決する。見つからない場合はreport.UnknownName。
func (d *Desk) nameOf(ctx context.Context, userID string) string {
	u, err := d.directory.Get(ctx, userID)
	if err != nil {
		return report.UnknownName
	}
	return u.Name
}

// --- メッセージ ---

// SendMessage はログイン中の利用者からメッセージを送信する。
// 本文の扱いはmessaging.Service.Sendと同じで、タグに見える文字列は除去される。
func (d *Desk) SendMessage(ctx context.Context, in MessageInput) (string, error) {
	s, err := d.session.Require("メッセージの送信")
	if err != nil {
		return "", err
	}
	if err := d.check(in); err != nil {
		return "", err
	}
	receiver, err := d.directory.Get(ctx, in.ReceiverID)
	if err != nil {
		return "", err
	}

	id, err := d.messages.Send(ctx, s.UserID, receiver.ID, in.Content)
	if err != nil {
		return "", err
	}
	d.record(ctx, audit.ActionMessageSent, fmt.Sprintf("To: %s", receiver.Name))
	return id, nil
}

// Inbox はログイン中の利用者宛てのメッセージを送信日時の昇順で返す。
func (d *Desk) Inbox(ctx context.Context) ([]report.MessageView, error) {
	s, err := d.session.Require("受信箱の参照")
	if err != nil {
		return nil, err
	}
	list, err := d.messages.Inbox(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	return d.reports.InboxViews(ctx, list)
}

// MarkMessageRead は受信したメッセージを既読にする。
func (d *Desk) MarkMessageRead(ctx context.Context, messageID string) error {
	s, err := d.session.Require("メッセージの既読化")
	if err != nil {
		return err
	}
	if err := d.messages.MarkRead(ctx, s.UserID, messageID); err != nil {
		return err
	}
	d.record(ctx, audit.ActionMessageRead, fmt.Sprintf("ID: %s", messageID))
	return nil
}
