package dateutil

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Layout is the on-disk representation of calendar dates.
const Layout = "2006-01-02"

var mondayWeeks = &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}

// Date builds a UTC midnight time for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t, keeping its calendar day.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

func FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func ParsePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := Parse(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MonthStart returns the first day of the month.
func MonthStart(year int, month time.Month) time.Time {
	return Truncate(mondayWeeks.With(Date(year, month, 15)).BeginningOfMonth())
}

// MonthEnd returns the last calendar day of the month.
func MonthEnd(year int, month time.Month) time.Time {
	return Truncate(mondayWeeks.With(Date(year, month, 15)).EndOfMonth())
}

func DaysInMonth(year int, month time.Month) int {
	return MonthEnd(year, month).Day()
}

// Monday returns the Monday starting the week that contains t.
func Monday(t time.Time) time.Time {
	return Truncate(mondayWeeks.With(Truncate(t)).BeginningOfWeek())
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// FormatMinutes renders a duration in minutes as H:MM. Negative values render as 0:00.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
