package journal

import (
	"sort"
	"time"

	"github.com/netgee-k/mt5-v2/internal/models"
)

// Stats is a portfolio-level rollup over a trade set. It is a value object
// computed on demand and never persisted or cached.
//
// ProfitFactor is the ratio of gross winning amount to gross losing amount.
// When the set contains no losing trade the ratio is undefined and the field
// is nil (JSON null); the source system returned 0 or 1 depending on the
// code path, this implementation deliberately pins the explicit-undefined
// convention instead.
type Stats struct {
	TotalTrades   int      `json:"total_trades"`
	WinningTrades int      `json:"winning_trades"`
	LosingTrades  int      `json:"losing_trades"`
	WinRate       float64  `json:"win_rate"`
	TotalProfit   float64  `json:"total_profit"`
	AvgProfit     float64  `json:"avg_profit"`
	MaxProfit     float64  `json:"max_profit"`
	MaxLoss       float64  `json:"max_loss"`
	ProfitFactor  *float64 `json:"profit_factor"`
}

// ComputeStats aggregates a trade set. An empty set yields a zero-valued
// Stats, which is a valid result, never an error. A trade with zero profit
// counts as a loss.
func ComputeStats(trades []models.Trade) Stats {
	s := Stats{TotalTrades: len(trades)}
	if s.TotalTrades == 0 {
		return s
	}

	var grossWin, grossLoss float64
	for i := range trades {
		t := &trades[i]
		profit := t.ProfitValue()

		s.TotalProfit += profit
		if t.IsWin() {
			s.WinningTrades++
			grossWin += profit
		} else {
			grossLoss += -profit
		}
		if profit > s.MaxProfit {
			s.MaxProfit = profit
		}
		if profit < s.MaxLoss {
			s.MaxLoss = profit
		}
	}

	s.LosingTrades = s.TotalTrades - s.WinningTrades
	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	s.AvgProfit = s.TotalProfit / float64(s.TotalTrades)

	if grossLoss > 0 {
		pf := grossWin / grossLoss
		s.ProfitFactor = &pf
	}

	return s
}

// SymbolStats is the per-symbol variant of Stats.
type SymbolStats struct {
	Symbol string `json:"symbol"`
	Stats
}

// ComputeSymbolStats groups trades by symbol and aggregates each group,
// sorted by trade count descending (symbol name ascending on ties).
func ComputeSymbolStats(trades []models.Trade) []SymbolStats {
	groups := make(map[string][]models.Trade)
	for _, t := range trades {
		groups[t.Symbol] = append(groups[t.Symbol], t)
	}

	out := make([]SymbolStats, 0, len(groups))
	for symbol, group := range groups {
		out = append(out, SymbolStats{Symbol: symbol, Stats: ComputeStats(group)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTrades == out[j].TotalTrades {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].TotalTrades > out[j].TotalTrades
	})
	return out
}

// HourlyStats is the per-hour-of-day variant of Stats.
type HourlyStats struct {
	Hour int `json:"hour"`
	Stats
}

// ComputeHourlyStats groups trades by the UTC hour of their open time
// (0-23) and aggregates each non-empty group, sorted by hour ascending.
func ComputeHourlyStats(trades []models.Trade) []HourlyStats {
	groups := make(map[int][]models.Trade)
	for _, t := range trades {
		hour := t.OpenTime.UTC().Hour()
		groups[hour] = append(groups[hour], t)
	}

	out := make([]HourlyStats, 0, len(groups))
	for hour := 0; hour < 24; hour++ {
		group, ok := groups[hour]
		if !ok {
			continue
		}
		out = append(out, HourlyStats{Hour: hour, Stats: ComputeStats(group)})
	}
	return out
}

// FilterByRange keeps trades whose open time falls in [from, to). A zero
// bound disables that side of the filter.
func FilterByRange(trades []models.Trade, from, to time.Time) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if !from.IsZero() && t.OpenTime.Before(from) {
			continue
		}
		if !to.IsZero() && !t.OpenTime.Before(to) {
			continue
		}
		out = append(out, t)
	}
	return out
}
