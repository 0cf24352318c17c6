// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Weekday は空き時間を登録できる曜日（平日のみ）を表す。
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// Weekdays は登録可能な曜日を週の順序で返す。
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// Valid は登録可能な曜日かどうかを返す。
func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday:
		return true
	}
	return false
}

// WeekdayOfDate は "2006-01-02" 形式の日付の曜日を返す。
// 日付が解析できない場合や土日の場合はfalseを返す。
func WeekdayOfDate(date string) (Weekday, bool) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", false
	}
	d := Weekday(strings.ToLower(t.Weekday().String()))
	return d, d.Valid()
}

const (
	// DateLayout は予約日の書式。
	DateLayout = "2006-01-02"
	// TimeLayout は予約時刻と空き時間帯の書式。
	TimeLayout = "15:04"
)

// Availability は講師1人分の曜日ごとの空き時間帯。
// 値は "09:00-12:00,14:00-17:00" のようにカンマ区切りの時間帯で、検証せずそのまま保持する。
// キーのない曜日は空きなしを意味する。
type Availability map[Weekday]string

// Clone はマップのコピーを返す。
func (a Availability) Clone() Availability {
	out := make(Availability, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Covers は指定した曜日と "15:04" 形式の時刻がいずれかの時間帯に含まれるかを返す。
// 開始時刻を含み、終了時刻を含まない。解析できない時間帯は無視する。
func (a Availability) Covers(day Weekday, hhmm string) bool {
	at, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return false
	}
	for _, window := range strings.Split(a[day], ",") {
		start, end, ok := strings.Cut(strings.TrimSpace(window), "-")
		if !ok {
			continue
		}
		s, err := time.Parse(TimeLayout, strings.TrimSpace(start))
		if err != nil {
			continue
		}
		e, err := time.Parse(TimeLayout, strings.TrimSpace(end))
		if err != nil {
			continue
		}
		if !at.Before(s) && at.Before(e) {
			return true
		}
	}
	return false
}
