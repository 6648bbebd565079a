package domain

import "time"

// Period selects the statistics window ending at a reference time.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// Contains reports whether date falls inside the period relative to now.
// Today means the same calendar day as now; week spans [startOfWeek(now),
// now] with weeks starting on Monday; month spans [startOfMonth(now), now].
func (p Period) Contains(date, now time.Time) bool {
	switch p {
	case PeriodToday:
		y1, m1, d1 := date.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case PeriodWeek:
		return !date.Before(startOfWeek(now)) && !date.After(now)
	case PeriodMonth:
		return !date.Before(startOfMonth(now)) && !date.After(now)
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7 // Sunday closes the week rather than opening it
	}
	return day.AddDate(0, 0, -(wd - 1))
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
