package models

import (
	"testing"
	"time"
)

func TestToday_UsesUTC(t *testing.T) {
	before := time.Now().UTC()
	got := Today()
	after := time.Now().UTC()

	if got.Location() != time.UTC {
		t.Errorf("Location = %v, want UTC", got.Location())
	}
	if !got.Equal(DateOf(before).Time) && !got.Equal(DateOf(after).Time) {
		t.Errorf("Today() = %s, want %s", got, DateOf(after))
	}
}

func TestDateOf_KeepsCalendarDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	zone := time.FixedZone("UTC-5", -5*60*60)
	late := time.Date(2024, time.March, 9, 23, 30, 0, 0, zone)

	if got := DateOf(late).String(); got != "2024-03-09" {
		t.Errorf("DateOf(local) = %s, want 2024-03-09", got)
	}
	if got := DateOf(late.UTC()).String(); got != "2024-03-10" {
		t.Errorf("DateOf(utc) = %s, want 2024-03-10", got)
	}
}

func TestDate_DaysUntil(t *testing.T) {
	start := NewDate(2024, time.January, 30)

	tests := []struct {
		end  Date
		want int
	}{
		{NewDate(2024, time.January, 30), 0},
		{NewDate(2024, time.February, 2), 3},
		{NewDate(2024, time.January, 29), -1},
	}
	for _, tt := range tests {
		if got := start.DaysUntil(tt.end); got != tt.want {
			t.Errorf("DaysUntil(%s) = %d, want %d", tt.end, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("String() = %s, want 2024-02-29", d)
	}

	for _, bad := range []string{"2024-02-30", "29/02/2024", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}
