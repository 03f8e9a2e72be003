package dates

import (
	"fmt"
	"time"
)

// Source records which form a PointInTime was built from.
type Source uint8

const (
	SourceUnknown Source = iota
	SourceCalendar
	SourceTimestamp
	SourceText
)

func (s Source) String() string {
	switch s {
	case SourceCalendar:
		return "calendar"
	case SourceTimestamp:
		return "timestamp"
	case SourceText:
		return "text"
	default:
		return "unknown"
	}
}

// PointInTime is a calendar date with no time of day or zone. The zero
// value means "no date".
type PointInTime struct {
	day    time.Time
	source Source
}

// DateOf builds a PointInTime from calendar fields. Out-of-range fields are
// normalized the way time.Date does; use Valid to reject them first.
func DateOf(year int, month time.Month, day int) PointInTime {
	return PointInTime{day: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), source: SourceCalendar}
}

// FromTime keeps the calendar date of t in t's own location.
func FromTime(t time.Time) PointInTime {
	if t.IsZero() {
		return PointInTime{}
	}
	y, m, d := t.Date()
	return PointInTime{day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), source: SourceTimestamp}
}

// ParseISO parses a YYYY-MM-DD string.
func ParseISO(s string) (PointInTime, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return PointInTime{}, fmt.Errorf("parse iso date %q: %w", s, err)
	}
	return PointInTime{day: t, source: SourceText}, nil
}

// fromText builds a PointInTime for a date found in free text. ok is false
// when the fields do not name a real calendar date.
func fromText(year int, month time.Month, day int) (PointInTime, bool) {
	if !Valid(year, month, day) {
		return PointInTime{}, false
	}
	p := DateOf(year, month, day)
	p.source = SourceText
	return p, true
}

// Valid reports whether the fields name a real calendar date.
func Valid(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == month && t.Day() == day
}

func (p PointInTime) IsZero() bool          { return p.day.IsZero() }
func (p PointInTime) Source() Source        { return p.source }
func (p PointInTime) Time() time.Time       { return p.day }
func (p PointInTime) Year() int             { return p.day.Year() }
func (p PointInTime) Month() time.Month     { return p.day.Month() }
func (p PointInTime) Day() int              { return p.day.Day() }
func (p PointInTime) Weekday() time.Weekday { return p.day.Weekday() }

// Compare returns -1, 0 or +1. Only the calendar date takes part.
func (p PointInTime) Compare(o PointInTime) int { return p.day.Compare(o.day) }

func (p PointInTime) Before(o PointInTime) bool { return p.day.Before(o.day) }
func (p PointInTime) After(o PointInTime) bool  { return p.day.After(o.day) }
func (p PointInTime) Equal(o PointInTime) bool  { return p.day.Equal(o.day) }

// AddDays moves p by n calendar days, keeping its source.
func (p PointInTime) AddDays(n int) PointInTime {
	return PointInTime{day: p.day.AddDate(0, 0, n), source: p.source}
}

// AddDate moves p the way time.Time.AddDate does, keeping its source.
func (p PointInTime) AddDate(years, months, days int) PointInTime {
	return PointInTime{day: p.day.AddDate(years, months, days), source: p.source}
}

// String formats p as YYYY-MM-DD, or "" for the zero value.
func (p PointInTime) String() string {
	if p.IsZero() {
		return ""
	}
	return p.day.Format(time.DateOnly)
}

// Format formats p with a time layout.
func (p PointInTime) Format(layout string) string {
	if p.IsZero() {
		return ""
	}
	return p.day.Format(layout)
}
