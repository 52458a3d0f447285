package models

import (
	"time"

	"gorm.io/gorm"
)

// Trade side values, taken from the opening deal.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Trade represents a logical round-trip position reconciled from broker
// deals. The derived fields (DurationMinutes, Pips, Win) are recomputed
// together on every resync; a nil value means the input needed to derive
// it was absent, not zero.
type Trade struct {
	gorm.Model
	UserID     uint   `gorm:"uniqueIndex:idx_user_ticket" json:"user_id"`
	Ticket     int64  `gorm:"uniqueIndex:idx_user_ticket" json:"ticket"`
	PositionID int64  `gorm:"index" json:"position_id"`
	Symbol     string `gorm:"index" json:"symbol"`
	Type       string `json:"type"` // "BUY" or "SELL"
	Volume     float64 `json:"volume"`

	OpenTime   time.Time  `gorm:"index" json:"time"`
	OpenPrice  float64    `json:"price"`
	CloseTime  *time.Time `json:"time_close,omitempty"`
	ClosePrice *float64   `json:"price_close,omitempty"`

	StopLoss   *float64 `json:"sl,omitempty"`
	TakeProfit *float64 `json:"tp,omitempty"`

	Commission float64  `json:"commission"`
	Swap       float64  `json:"swap"`
	Profit     *float64 `json:"profit,omitempty"`
	Comment    string   `json:"comment,omitempty"`

	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Pips            *float64 `json:"pips,omitempty"`
	Win             *bool    `json:"win,omitempty"`

	SyncedAt time.Time `json:"synced_at"`
}

// ProfitValue returns the trade profit, treating an unknown profit as zero.
func (t *Trade) ProfitValue() float64 {
	if t.Profit == nil {
		return 0
	}
	return *t.Profit
}

// IsWin reports whether the trade closed with a positive profit. Zero and
// unknown profits count as losses.
func (t *Trade) IsWin() bool {
	return t.Profit != nil && *t.Profit > 0
}
