package models

import (
	"fmt"
	"time"
)

// WeekKey formats an ISO week number the way weekly XP is keyed.
func WeekKey(week int) string {
	return fmt.Sprintf("week_%d", week)
}

// MonthKey formats the hall of fame key for the month containing t.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}

// PreviousMonthKey returns the key for the month before the one containing t.
func PreviousMonthKey(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return MonthKey(first.AddDate(0, -1, 0))
}

// ISOWeek returns the ISO week number of t.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}
