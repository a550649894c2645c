package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampDayToMonth(t *testing.T) {
	feb2025 := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	feb2024 := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC) // leap year
	jan := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 28, ClampDayToMonth(31, feb2025))
	assert.Equal(t, 29, ClampDayToMonth(31, feb2024))
	assert.Equal(t, 30, ClampDayToMonth(31, apr))
	assert.Equal(t, 31, ClampDayToMonth(31, jan))
	assert.Equal(t, 15, ClampDayToMonth(15, feb2025))
	assert.Equal(t, 1, ClampDayToMonth(0, jan))
	assert.Equal(t, 1, ClampDayToMonth(-3, jan))
}

func TestNextRentDueDate(t *testing.T) {
	t.Run("DueLaterThisMonth", func(t *testing.T) {
		now := time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC)
		due := NextRentDueDate(15, now)
		assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), due)
	})

	t.Run("DueToday", func(t *testing.T) {
		now := time.Date(2025, time.March, 15, 23, 0, 0, 0, time.UTC)
		due := NextRentDueDate(15, now)
		assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), due)
	})

	t.Run("RollsToNextMonth", func(t *testing.T) {
		now := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
		due := NextRentDueDate(15, now)
		assert.Equal(t, time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC), due)
	})

	t.Run("ClampedInShortMonth", func(t *testing.T) {
		now := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
		due := NextRentDueDate(31, now)
		assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), due)
	})

	t.Run("RollsPastClampedOccurrence", func(t *testing.T) {
		// Past Feb 28 means the next occurrence lands on Mar 31
		now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		due := NextRentDueDate(31, now)
		assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), due)
	})
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, time.June, 10, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(time.Date(2025, time.June, 10, 2, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 5, DaysUntil(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -1, DaysUntil(time.Date(2025, time.June, 9, 23, 0, 0, 0, time.UTC), now))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, DaysInMonth(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, DaysInMonth(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, DaysInMonth(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)))
}

func TestIsExpired(t *testing.T) {
	assert.True(t, IsExpired(time.Now().UTC().Add(-time.Minute)))
	assert.False(t, IsExpired(time.Now().UTC().Add(time.Minute)))
	assert.False(t, IsExpiredPtr(nil))
}
