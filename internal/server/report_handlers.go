package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/netgee-k/mt5-v2/internal/journal"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	var reports []models.WeeklyReport
	err := s.db.Where("user_id = ?", userID(r)).Order("week_start desc").
		Limit(queryInt(r, "limit", 12)).Find(&reports).Error
	if err != nil {
		s.log.Error("Failed to get reports", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get reports")
		return
	}

	s.writeJSON(w, http.StatusOK, reports)
}

// handleGenerateWeeklyReport analyzes the last seven days of trades and
// stores the resulting report. The previous week's stats are passed to the
// analyzer for trend context.
func (s *Server) handleGenerateWeeklyReport(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	now := time.Now().UTC()
	weekStart := now.AddDate(0, 0, -7)
	prevStart := now.AddDate(0, 0, -14)

	trades, err := s.loadTrades(uid, weekStart, now)
	if err != nil {
		s.log.Error("Failed to get trades for report", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	prevTrades, err := s.loadTrades(uid, prevStart, weekStart)
	if err != nil {
		s.log.Error("Failed to get previous week trades", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	var previous *journal.Stats
	if len(prevTrades) > 0 {
		stats := journal.ComputeStats(prevTrades)
		previous = &stats
	}

	analysis := s.analyzer.AnalyzeWeek(r.Context(), trades, previous)
	stats := journal.ComputeStats(trades)

	report := models.WeeklyReport{
		UserID:           uid,
		WeekStart:        weekStart,
		WeekEnd:          now,
		Summary:          analysis.Summary,
		PerformanceScore: analysis.PerformanceScore,
		WinRate:          stats.WinRate,
		TotalTrades:      stats.TotalTrades,
		TotalProfit:      stats.TotalProfit,
		Recommendations:  mustJSON(analysis.Recommendations),
		Patterns:         mustJSON(analysis.Patterns),
		BestTrade:        mustJSON(analysis.BestTrade),
		WorstTrade:       mustJSON(analysis.WorstTrade),
		Sentiment:        analysis.Sentiment,
		Outlook:          analysis.Outlook,
	}
	if err := s.db.Create(&report).Error; err != nil {
		s.log.Error("Failed to save report", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	s.log.Info("Weekly report generated",
		zap.Uint("user_id", uid),
		zap.Float64("score", report.PerformanceScore))
	s.writeJSON(w, http.StatusCreated, report)
}

// mustJSON renders v as a JSON string column value; nil becomes "null".
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
