package models

import (
	"time"

	"gorm.io/gorm"
)

// WeeklyReport stores one generated AI performance review. The list-valued
// analysis fields are kept as JSON strings so the schema stays portable
// across sqlite setups.
type WeeklyReport struct {
	gorm.Model
	UserID    uint      `gorm:"index" json:"user_id"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`

	Summary          string  `json:"summary"`
	PerformanceScore float64 `json:"performance_score"`
	WinRate          float64 `json:"win_rate"`
	TotalTrades      int     `json:"total_trades"`
	TotalProfit      float64 `json:"total_profit"`

	Recommendations string `json:"recommendations"` // JSON array
	Patterns        string `json:"patterns_identified"` // JSON array
	BestTrade       string `json:"best_trade"`  // JSON object
	WorstTrade      string `json:"worst_trade"` // JSON object
	Sentiment       string `json:"sentiment_analysis"`
	Outlook         string `json:"next_week_outlook"`
}
