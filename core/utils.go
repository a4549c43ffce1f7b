package core

import (
	"strings"
	"time"
)

// DayLayout is the wire format of calendar days.
const DayLayout = "2006-01-02"

// GradeLevels lists the school's grade levels, in report order.
var GradeLevels = []string{"9th Grade", "10th Grade", "11th Grade", "12th Grade"}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Day truncates `t` to its calendar day, keeping the wall clock date of t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
