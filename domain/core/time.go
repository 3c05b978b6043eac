package core

import (
	"time"
)

// Clock abstracts wall-clock reads so the reconciliation state machines
// can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DateOf truncates a timestamp to its calendar date in local time.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// WeekBounds returns the Monday 00:00 and the following Monday 00:00
// bracketing the week that contains t. Reports aggregate over [monday, next).
func WeekBounds(t time.Time) (monday, next time.Time) {
	day := DateOf(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	monday = day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 7)
}

// WeekdayLabels are the report row labels, Monday first.
var WeekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayIndex maps a timestamp to its Monday-first weekday index.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
