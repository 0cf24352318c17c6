// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。役割によって実行可能な操作が決まる。
type Role string

const (
	// RoleAdmin は管理者。講師・学生アカウントの管理と集計の閲覧を行う。
	RoleAdmin Role = "admin"
	// RoleTeacher は講師。空き時間の登録と予約の承認・却下を行う。
	RoleTeacher Role = "teacher"
	// RoleStudent は学生。自己登録、予約、予約のキャンセルを行う。
	RoleStudent Role = "student"
)

// Valid は定義済みの役割かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User はシステムの利用者を表す。
// Passwordは平文のまま保持する（デモ用途のためハッシュ化しない）。
type User struct {
	ID         string
	Email      string
	Password   string
	Role       Role
	Name       string
	Phone      string
	Department string
	Subject    string // 講師のみ。カンマ区切りの担当科目
	Approved   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProfileUpdate はプロフィールの部分更新を表す。
// nilのフィールドは変更しない。
type ProfileUpdate struct {
	Name       *string
	Email      *string
	Phone      *string
	Department *string
	Subject    *string
}

// Apply はnilでないフィールドをユーザーに上書きする。
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Subject != nil {
		u.Subject = *p.Subject
	}
}

// UserFilter はユーザー一覧の絞り込み条件を表す。
// 空文字のフィールドは条件に含めない。
type UserFilter struct {
	Role       Role
	Department string // 完全一致
	Subject    string // 大文字小文字を区別しない部分一致
}

// Session はログイン中の利用者を表す。
// 同時に存在するセッションは1つのみ。
type Session struct {
	UserID    string
	Role      Role
	Name      string
	Email     string
	StartedAt time.Time
}
