package journal

import (
	"time"

	"github.com/netgee-k/mt5-v2/internal/models"
)

// CalendarDay is one cell of the monthly calendar grid.
type CalendarDay struct {
	Day     int     `json:"day"`
	Date    string  `json:"date"` // YYYY-MM-DD
	Count   int     `json:"count"`
	Profit  float64 `json:"profit"`
	WinRate float64 `json:"win_rate"`
	IsToday bool    `json:"is_today"`
}

// MonthCalendar buckets a month's trades by calendar day (UTC) and returns
// one entry per day of the month, including empty days. Trades outside the
// month are ignored.
func MonthCalendar(trades []models.Trade, year int, month time.Month, today time.Time) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	byDay := make(map[int][]models.Trade)
	for _, t := range trades {
		ot := t.OpenTime.UTC()
		if ot.Year() != year || ot.Month() != month {
			continue
		}
		byDay[ot.Day()] = append(byDay[ot.Day()], t)
	}

	todayUTC := today.UTC()
	out := make([]CalendarDay, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		cell := CalendarDay{
			Day:     day,
			Date:    date.Format("2006-01-02"),
			IsToday: date.Year() == todayUTC.Year() && date.YearDay() == todayUTC.YearDay(),
		}
		if dayTrades, ok := byDay[day]; ok {
			stats := ComputeStats(dayTrades)
			cell.Count = stats.TotalTrades
			cell.Profit = stats.TotalProfit
			cell.WinRate = stats.WinRate
		}
		out = append(out, cell)
	}
	return out
}
