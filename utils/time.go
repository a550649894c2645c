// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// UTCNowAddPtr returns a pointer to the current UTC time plus the given duration
func UTCNowAddPtr(d time.Duration) *time.Time {
	now := UTCNowAdd(d)
	return &now
}

// IsExpired checks if the given time is in the past (expired)
func IsExpired(t time.Time) bool {
	return UTCNow().After(t)
}

// IsExpiredPtr checks if the given time pointer is in the past (expired)
func IsExpiredPtr(t *time.Time) bool {
	if t == nil {
		return false
	}
	return IsExpired(*t)
}

// TruncateToDay strips the time-of-day portion, keeping the UTC calendar date.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDayToMonth clamps a day-of-month (1-31) to the last day of the month
// containing t. A rent due day of 31 resolves to Feb 28/29 in February.
func ClampDayToMonth(day int, t time.Time) int {
	if day < 1 {
		day = 1
	}
	if max := DaysInMonth(t); day > max {
		return max
	}
	return day
}

// NextRentDueDate resolves the next occurrence of a monthly rent due day
// relative to now. The due day is clamped to the month's last day; if this
// month's occurrence is already past, the next month's occurrence is returned.
func NextRentDueDate(rentDueDay int, now time.Time) time.Time {
	today := TruncateToDay(now)

	due := time.Date(today.Year(), today.Month(), ClampDayToMonth(rentDueDay, today), 0, 0, 0, 0, time.UTC)
	if due.Before(today) {
		next := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		due = time.Date(next.Year(), next.Month(), ClampDayToMonth(rentDueDay, next), 0, 0, 0, 0, time.UTC)
	}

	return due
}

// DaysUntil returns the number of whole calendar days from now until t.
// Zero means t is today, negative means t is in the past.
func DaysUntil(t, now time.Time) int {
	return int(TruncateToDay(t).Sub(TruncateToDay(now)).Hours() / 24)
}
