package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-12))
	assert.Equal(t, 100, ClampScore(180.4))
	assert.Equal(t, 43, ClampScore(42.5))
	assert.Equal(t, 100, ClampScore(math.Inf(1)))
	assert.Equal(t, 0, ClampScore(math.Inf(-1)))
	assert.Equal(t, 100, ClampScore(1e300))
	assert.Equal(t, 0, ClampScore(math.NaN()))
}

func TestFormatHourTimestamp(t *testing.T) {
	assert.Equal(t, "12:00 AM", FormatHourTimestamp(0))
	assert.Equal(t, "9:00 AM", FormatHourTimestamp(9))
	assert.Equal(t, "12:00 PM", FormatHourTimestamp(12))
	assert.Equal(t, "3:00 PM", FormatHourTimestamp(15))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "1h 05m", FormatMinutes(65))
}

func TestStartOfDayAndWeekend(t *testing.T) {
	sat := time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), StartOfDay(sat))
	assert.True(t, IsWeekend(sat))
	assert.False(t, IsWeekend(sat.AddDate(0, 0, 2)))
	assert.Equal(t, "2026-10-17", DateKey(sat))
}

func TestManualClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start.Add(time.Minute), clock.Advance(time.Minute))
}

func TestSequentialIDs(t *testing.T) {
	next := SequentialIDs("evt")
	assert.Equal(t, "evt-1", next())
	assert.Equal(t, "evt-2", next())
}
