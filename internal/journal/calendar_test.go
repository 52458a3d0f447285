package journal

import (
	"testing"
	"time"

	"github.com/netgee-k/mt5-v2/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMonthCalendar(t *testing.T) {
	trades := []models.Trade{
		tradeWithProfit("EURUSD", time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), 100),
		tradeWithProfit("EURUSD", time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC), -40),
		tradeWithProfit("EURUSD", time.Date(2025, 3, 20, 11, 0, 0, 0, time.UTC), 25),
		// Outside the month, must be ignored.
		tradeWithProfit("EURUSD", time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC), 999),
	}
	today := time.Date(2025, 3, 20, 16, 30, 0, 0, time.UTC)

	days := MonthCalendar(trades, 2025, time.March, today)

	assert.Len(t, days, 31)

	fifth := days[4]
	assert.Equal(t, 5, fifth.Day)
	assert.Equal(t, "2025-03-05", fifth.Date)
	assert.Equal(t, 2, fifth.Count)
	assert.InDelta(t, 60.0, fifth.Profit, 1e-9)
	assert.InDelta(t, 50.0, fifth.WinRate, 1e-9)
	assert.False(t, fifth.IsToday)

	twentieth := days[19]
	assert.Equal(t, 1, twentieth.Count)
	assert.True(t, twentieth.IsToday)

	// Empty day renders as a zero cell, not a gap.
	assert.Equal(t, 0, days[0].Count)
	assert.Equal(t, "2025-03-01", days[0].Date)
}

func TestMonthCalendarFebruaryLength(t *testing.T) {
	assert.Len(t, MonthCalendar(nil, 2025, time.February, time.Time{}), 28)
	assert.Len(t, MonthCalendar(nil, 2024, time.February, time.Time{}), 29)
}
