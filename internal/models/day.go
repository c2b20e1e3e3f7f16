package models

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date in ISO form (YYYY-MM-DD), in the process-local timezone
type Day string

// DayOf returns the local calendar day containing t
func DayOf(t time.Time) Day {
	return Day(t.In(time.Local).Format(dayLayout))
}

// Today returns the current local calendar day
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay validates an ISO date string
func ParseDay(s string) (Day, error) {
	if _, err := time.ParseInLocation(dayLayout, s, time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day(s), nil
}

// AddDays returns the day n calendar days after d (n may be negative).
// Calendar arithmetic is used so DST transitions never skip or repeat a day.
func (d Day) AddDays(n int) Day {
	t, err := time.ParseInLocation(dayLayout, string(d), time.Local)
	if err != nil {
		return d
	}
	return Day(time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, time.Local).Format(dayLayout))
}

func (d Day) String() string {
	return string(d)
}
