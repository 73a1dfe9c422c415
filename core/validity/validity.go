// Package validity decides whether a versioned rate is live on a calendar date.
package validity

import (
	"time"
)

// DateLayout is the calendar date format used at every boundary
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date in UTC
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// IsLive reports whether validFrom <= asOf <= validTo, comparing calendar dates only.
// A zero bound is open.
func IsLive(validFrom, validTo, asOf time.Time) bool {
	day := Day(asOf)
	if !validFrom.IsZero() && day.Before(Day(validFrom)) {
		return false
	}
	if !validTo.IsZero() && day.After(Day(validTo)) {
		return false
	}
	return true
}
