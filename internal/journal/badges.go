package journal

import (
	"fmt"
	"sort"

	"github.com/netgee-k/mt5-v2/internal/models"
)

// Badge types. The set is fixed; thresholds are configurable.
const (
	BadgeBestTrader   = "best_trader"
	BadgeConsistency  = "consistency"
	BadgeRiskManager  = "risk_manager"
	BadgeHighProfit   = "high_profit"
	BadgeDisciplined  = "disciplined"
	BadgeComebackKing = "comeback_king"
)

// BadgeAward is one newly qualifying badge.
type BadgeAward struct {
	Type        string `json:"badge_type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Thresholds are the tunable rule parameters of the badge engine.
type Thresholds struct {
	WinRate            float64 // Best Trader: overall win rate must exceed this
	ConsistencyOverall float64 // Consistency King: overall win rate floor
	ConsistencyRecent  float64 // Consistency King: most-recent-10 win rate floor
	MinTrades          int     // Consistency King: minimum trade count
	HighProfit         float64 // High Profit: total profit floor (currency units)
	DisciplineShare    float64 // Disciplined Trader: share of trades with a stop loss
	RewardRiskTarget   float64 // Risk Manager: reward/risk ratio considered good
	RewardRiskShare    float64 // Risk Manager: share of trades that must hit the target
	DrawdownPercent    float64 // Comeback King: peak-to-trough drawdown floor
}

// DefaultThresholds returns the stock rule parameters.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WinRate:            70,
		ConsistencyOverall: 60,
		ConsistencyRecent:  55,
		MinTrades:          20,
		HighProfit:         1000,
		DisciplineShare:    0.8,
		RewardRiskTarget:   1.5,
		RewardRiskShare:    0.7,
		DrawdownPercent:    20,
	}
}

// EvaluateBadges applies the badge rules to a trade window and returns the
// badge types the user newly qualifies for. Types already present in held
// are excluded, which makes the evaluation idempotent: awarding is
// append-only and a badge is never revoked. Pure function over its inputs.
func EvaluateBadges(trades []models.Trade, held map[string]bool, th Thresholds) []BadgeAward {
	var awards []BadgeAward
	if len(trades) == 0 {
		return awards
	}

	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].OpenTime.Before(ordered[j].OpenTime)
	})

	stats := ComputeStats(ordered)
	grant := func(badgeType, name, description string) {
		if !held[badgeType] {
			awards = append(awards, BadgeAward{Type: badgeType, Name: name, Description: description})
		}
	}

	// Best Trader: high win rate and net profitable.
	if stats.WinRate > th.WinRate && stats.TotalProfit > 0 {
		grant(BadgeBestTrader, "Best Trader",
			fmt.Sprintf("Achieved %.1f%% win rate with $%.2f profit", stats.WinRate, stats.TotalProfit))
	}

	// Consistency King: enough history, a solid overall win rate and the
	// most recent ten trades still above the recent floor.
	if stats.TotalTrades >= th.MinTrades && stats.WinRate > th.ConsistencyOverall {
		recent := ordered
		if len(recent) > 10 {
			recent = recent[len(recent)-10:]
		}
		if ComputeStats(recent).WinRate > th.ConsistencyRecent {
			grant(BadgeConsistency, "Consistency King",
				"Consistent profitable trading over multiple sessions")
		}
	}

	// Risk Manager: of the trades with both stop loss and take profit set,
	// enough of them target a reward/risk ratio at or above the target.
	if onTarget, total := rewardRiskCounts(ordered, th.RewardRiskTarget); total > 0 {
		if float64(onTarget)/float64(total) > th.RewardRiskShare {
			grant(BadgeRiskManager, "Risk Manager",
				"Excellent risk-reward management in trades")
		}
	}

	// High Profit: raw currency threshold.
	if stats.TotalProfit > th.HighProfit {
		grant(BadgeHighProfit, "High Profit",
			fmt.Sprintf("Generated $%.2f in total profit", stats.TotalProfit))
	}

	// Disciplined Trader: most trades carry a non-zero stop loss.
	withStop := 0
	for i := range ordered {
		if ordered[i].StopLoss != nil && *ordered[i].StopLoss > 0 {
			withStop++
		}
	}
	if float64(withStop)/float64(len(ordered)) > th.DisciplineShare {
		grant(BadgeDisciplined, "Disciplined Trader",
			"Consistently follows trading rules")
	}

	// Comeback King: the equity curve fell into a deep drawdown and then
	// recovered to a new high.
	if len(ordered) >= 10 && recoveredFromDrawdown(ordered, th.DrawdownPercent) {
		grant(BadgeComebackKing, "Comeback King",
			"Recovered from significant drawdown")
	}

	return awards
}

// rewardRiskCounts returns how many trades with both stop loss and take
// profit set have a reward/risk ratio at or above target, and how many
// such trades there are in total.
func rewardRiskCounts(trades []models.Trade, target float64) (onTarget, total int) {
	for i := range trades {
		t := &trades[i]
		if t.StopLoss == nil || t.TakeProfit == nil {
			continue
		}
		risk := abs(t.OpenPrice - *t.StopLoss)
		reward := abs(*t.TakeProfit - t.OpenPrice)
		if risk <= 0 {
			continue
		}
		total++
		if reward/risk >= target {
			onTarget++
		}
	}
	return onTarget, total
}

// recoveredFromDrawdown walks the cumulative equity curve in time order and
// reports whether a peak-to-trough decline deeper than minPercent of the
// peak was later followed by a new equity high above that peak.
func recoveredFromDrawdown(ordered []models.Trade, minPercent float64) bool {
	var equity, peak float64
	var inDrawdown bool
	var drawdownPeak float64

	for i := range ordered {
		equity += ordered[i].ProfitValue()

		if equity > peak {
			if inDrawdown && equity > drawdownPeak {
				return true
			}
			peak = equity
			continue
		}

		if peak > 0 {
			drawdown := (peak - equity) / peak * 100
			if drawdown > minPercent {
				inDrawdown = true
				drawdownPeak = peak
			}
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
