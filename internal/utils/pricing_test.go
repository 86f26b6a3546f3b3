package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		date, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("Invalid month", func(t *testing.T) {
		_, err := ParseDate("2024-13-15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "month must be between 1 and 12")
	})

	t.Run("Day past end of month", func(t *testing.T) {
		_, err := ParseDate("2023-02-29")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("Leap day", func(t *testing.T) {
		date, err := ParseDate("2024-02-29")
		assert.NoError(t, err)
		assert.Equal(t, "2024-02-29", FormatDate(date))
	})
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{"same day", time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC), 0},
		{"five days", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 5},
		{"partial days count by calendar", time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC), time.Date(2024, 1, 11, 0, 1, 0, 0, time.UTC), 1},
		{"across month end", time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), 3},
		{"across leap day", time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 2},
		{"early", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.start, tt.end))
		})
	}
}

func TestResolveDailyRate(t *testing.T) {
	ten := decimal.NewFromInt(10)
	fallback := decimal.RequireFromString("5.00")

	t.Run("Override wins", func(t *testing.T) {
		override := decimal.RequireFromString("7.50")
		reference := decimal.NewFromInt(100)
		got := ResolveDailyRate(&override, &reference, ten, fallback)
		assert.True(t, got.Equal(override))
	})

	t.Run("Percentage of reference rate", func(t *testing.T) {
		reference := decimal.RequireFromString("45.00")
		got := ResolveDailyRate(nil, &reference, ten, fallback)
		assert.Equal(t, "4.50", got.StringFixed(2))
	})

	t.Run("Fallback when nothing resolvable", func(t *testing.T) {
		zero := decimal.Zero
		got := ResolveDailyRate(nil, &zero, ten, fallback)
		assert.True(t, got.Equal(fallback))

		got = ResolveDailyRate(nil, nil, ten, fallback)
		assert.True(t, got.Equal(fallback))
	})
}
