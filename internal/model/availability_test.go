package model

import "testing"

func TestWeekdayOfDate(t *testing.T) {
	tests := []struct {
		date   string
		want   Weekday
		wantOK bool
	}{
		{"2025-08-18", Monday, true},
		{"2025-08-19", Tuesday, true},
		{"2025-08-22", Friday, true},
		{"2025-08-23", "saturday", false},
		{"2025-08-24", "sunday", false},
		{"2025/08/18", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, ok := WeekdayOfDate(tt.date)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("WeekdayOfDate(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestWeekday_Valid(t *testing.T) {
	for _, d := range Weekdays() {
		if !d.Valid() {
			t.Errorf("%q should be valid", d)
		}
	}
	for _, d := range []Weekday{"saturday", "sunday", "Monday", ""} {
		if d.Valid() {
			t.Errorf("%q should be invalid", d)
		}
	}
}

// TestAvailability_Covers は時間帯の境界（開始を含み終了を含まない）を検証する。
func TestAvailability_Covers(t *testing.T) {
	a := Availability{
		Monday:  "09:00-12:00,14:00-17:00",
		Tuesday: "broken, 10:00-11:00",
	}

	tests := []struct {
		name string
		day  Weekday
		at   string
		want bool
	}{
		{"開始時刻", Monday, "09:00", true},
		{"時間帯内", Monday, "11:30", true},
		{"終了時刻", Monday, "12:00", false},
		{"時間帯の間", Monday, "13:00", false},
		{"2つ目の時間帯", Monday, "16:59", true},
		{"不正な時間帯は無視", Tuesday, "10:30", true},
		{"未登録の曜日", Wednesday, "10:00", false},
		{"時刻の書式不正", Monday, "10am", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Covers(tt.day, tt.at); got != tt.want {
				t.Errorf("Covers(%q, %q) = %v, want %v", tt.day, tt.at, got, tt.want)
			}
		})
	}
}

func TestAvailability_Clone(t *testing.T) {
	a := Availability{Monday: "09:00-12:00"}
	c := a.Clone()
	c[Monday] = "10:00-11:00"
	if a[Monday] != "09:00-12:00" {
		t.Errorf("original mutated: %q", a[Monday])
	}
}
