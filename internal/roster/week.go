package roster

import (
	"strings"
	"time"
)

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Weekdays lists the grid's day columns in order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// WeekStart returns the Monday of the ISO week containing t, at midnight.
func WeekStart(t time.Time) time.Time {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateForWeekday returns the "YYYY-MM-DD" date of the named weekday within the
// week starting at weekStart (a Monday). Names are case-insensitive.
func DateForWeekday(weekStart time.Time, day string) (string, error) {
	wd, ok := weekdayMap[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return "", ErrInvalidWeekday
	}
	offset := int(wd) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday lands at the end of the week
	}
	return weekStart.AddDate(0, 0, offset).Format("2006-01-02"), nil
}

// DayName returns the canonical weekday name for a "YYYY-MM-DD" date.
func DayName(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", ErrInvalidDateFormat
	}
	return t.Weekday().String(), nil
}
