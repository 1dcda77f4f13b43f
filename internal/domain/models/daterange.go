package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in queries.
const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar-day window. A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange builds a range from optional YYYY-MM-DD strings.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse start date %q: %w", start, err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse end date %q: %w", end, err)
		}
		r.End = t
	}
	return r, nil
}

// Contains reports whether t falls inside the range, comparing calendar days.
func (r DateRange) Contains(t time.Time) bool {
	day := t.UTC().Format(DateLayout)
	if !r.Start.IsZero() && day < r.Start.UTC().Format(DateLayout) {
		return false
	}
	if !r.End.IsZero() && day > r.End.UTC().Format(DateLayout) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (r DateRange) IsOpen() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Empty reports whether the range can contain no day at all.
func (r DateRange) Empty() bool {
	return !r.Start.IsZero() && !r.End.IsZero() &&
		r.Start.UTC().Format(DateLayout) > r.End.UTC().Format(DateLayout)
}

// StartOfDay returns t truncated to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}
