package server

import (
	"net/http"
	"time"

	"github.com/netgee-k/mt5-v2/internal/journal"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
)

// loadTrades fetches a user's trades with an optional open-time window.
// Zero bounds disable that side of the filter.
func (s *Server) loadTrades(uid uint, from, to time.Time) ([]models.Trade, error) {
	query := s.db.Where("user_id = ?", uid)
	if !from.IsZero() {
		query = query.Where("open_time >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("open_time < ?", to)
	}

	var trades []models.Trade
	err := query.Order("open_time").Find(&trades).Error
	return trades, err
}

// handleStats returns overall, weekly and monthly rollups, or a custom
// range when from/to query parameters (YYYY-MM-DD) are given.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	from, okFrom := queryDate(r, "from")
	to, okTo := queryDate(r, "to")
	if okFrom || okTo {
		trades, err := s.loadTrades(uid, from, to)
		if err != nil {
			s.log.Error("Failed to get trades for statistics", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "failed to calculate statistics")
			return
		}
		s.writeJSON(w, http.StatusOK, journal.ComputeStats(trades))
		return
	}

	trades, err := s.loadTrades(uid, time.Time{}, time.Time{})
	if err != nil {
		s.log.Error("Failed to get trades for statistics", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to calculate statistics")
		return
	}

	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"overall": journal.ComputeStats(trades),
		"weekly":  journal.ComputeStats(journal.FilterByRange(trades, weekAgo, time.Time{})),
		"monthly": journal.ComputeStats(journal.FilterByRange(trades, monthAgo, time.Time{})),
	})
}

func (s *Server) handleSymbolStats(w http.ResponseWriter, r *http.Request) {
	trades, err := s.loadTrades(userID(r), time.Time{}, time.Time{})
	if err != nil {
		s.log.Error("Failed to get trades for statistics", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to calculate statistics")
		return
	}

	s.writeJSON(w, http.StatusOK, journal.ComputeSymbolStats(trades))
}

func (s *Server) handleHourlyStats(w http.ResponseWriter, r *http.Request) {
	trades, err := s.loadTrades(userID(r), time.Time{}, time.Time{})
	if err != nil {
		s.log.Error("Failed to get trades for statistics", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to calculate statistics")
		return
	}

	s.writeJSON(w, http.StatusOK, journal.ComputeHourlyStats(trades))
}

// handleDailyStats aggregates one calendar day (UTC); date defaults to today.
func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	day, ok := queryDate(r, "date")
	if !ok {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	trades, err := s.loadTrades(userID(r), day, day.AddDate(0, 0, 1))
	if err != nil {
		s.log.Error("Failed to get trades for statistics", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to calculate statistics")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"date":  day.Format("2006-01-02"),
		"stats": journal.ComputeStats(trades),
	})
}

// handleCalendar returns the per-day grid for one month plus the month's
// rollup, defaulting to the current month.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		s.writeError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	trades, err := s.loadTrades(userID(r), first, first.AddDate(0, 1, 0))
	if err != nil {
		s.log.Error("Failed to get trades for calendar", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"year":        year,
		"month":       month,
		"days":        journal.MonthCalendar(trades, year, time.Month(month), now),
		"month_stats": journal.ComputeStats(trades),
	})
}

func queryDate(r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
