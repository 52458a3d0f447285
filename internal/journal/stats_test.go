package journal

import (
	"testing"
	"time"

	"github.com/netgee-k/mt5-v2/internal/models"
	"github.com/stretchr/testify/assert"
)

func tradeWithProfit(symbol string, at time.Time, profit float64) models.Trade {
	return models.Trade{
		Symbol:    symbol,
		Type:      models.SideBuy,
		OpenTime:  at,
		OpenPrice: 1.1,
		Profit:    fptr(profit),
	}
}

func TestComputeStats(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// Seven wins of +100 and three losses of -100.
	var trades []models.Trade
	for i := 0; i < 7; i++ {
		trades = append(trades, tradeWithProfit("EURUSD", base.Add(time.Duration(i)*time.Hour), 100))
	}
	for i := 0; i < 3; i++ {
		trades = append(trades, tradeWithProfit("EURUSD", base.Add(time.Duration(7+i)*time.Hour), -100))
	}

	stats := ComputeStats(trades)

	assert.Equal(t, 10, stats.TotalTrades)
	assert.Equal(t, 7, stats.WinningTrades)
	assert.Equal(t, 3, stats.LosingTrades)
	assert.InDelta(t, 70.0, stats.WinRate, 1e-9)
	assert.InDelta(t, 400.0, stats.TotalProfit, 1e-9)
	assert.InDelta(t, 40.0, stats.AvgProfit, 1e-9)
	assert.InDelta(t, 100.0, stats.MaxProfit, 1e-9)
	assert.InDelta(t, -100.0, stats.MaxLoss, 1e-9)
	assert.NotNil(t, stats.ProfitFactor)
	assert.InDelta(t, 700.0/300.0, *stats.ProfitFactor, 1e-9)
}

func TestComputeStatsEmptySet(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, Stats{}, stats)
	assert.Nil(t, stats.ProfitFactor)
}

func TestComputeStatsNoLossesLeavesProfitFactorUndefined(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		tradeWithProfit("EURUSD", base, 50),
		tradeWithProfit("EURUSD", base.Add(time.Hour), 30),
	}

	stats := ComputeStats(trades)

	assert.Equal(t, 2, stats.WinningTrades)
	assert.Nil(t, stats.ProfitFactor, "profit factor is undefined without losses")
}

func TestComputeStatsZeroAndUnknownProfitCountAsLosses(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	unknown := models.Trade{Symbol: "EURUSD", OpenTime: base, OpenPrice: 1.1}

	stats := ComputeStats([]models.Trade{
		tradeWithProfit("EURUSD", base, 0),
		unknown,
		tradeWithProfit("EURUSD", base, 10),
	})

	assert.Equal(t, 1, stats.WinningTrades)
	assert.Equal(t, 2, stats.LosingTrades)
}

func TestComputeSymbolStatsOrdering(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		tradeWithProfit("GBPUSD", base, 10),
		tradeWithProfit("EURUSD", base, 10),
		tradeWithProfit("EURUSD", base, -5),
		tradeWithProfit("USDJPY", base, 3),
	}

	bySymbol := ComputeSymbolStats(trades)

	assert.Len(t, bySymbol, 3)
	assert.Equal(t, "EURUSD", bySymbol[0].Symbol, "most traded symbol first")
	assert.Equal(t, 2, bySymbol[0].TotalTrades)
	// GBPUSD and USDJPY tie on count; alphabetical order breaks the tie.
	assert.Equal(t, "GBPUSD", bySymbol[1].Symbol)
	assert.Equal(t, "USDJPY", bySymbol[2].Symbol)
}

func TestComputeHourlyStatsSkipsEmptyHours(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		tradeWithProfit("EURUSD", day.Add(9*time.Hour), 10),
		tradeWithProfit("EURUSD", day.Add(9*time.Hour+30*time.Minute), -5),
		tradeWithProfit("EURUSD", day.Add(15*time.Hour), 20),
	}

	hourly := ComputeHourlyStats(trades)

	assert.Len(t, hourly, 2)
	assert.Equal(t, 9, hourly[0].Hour)
	assert.Equal(t, 2, hourly[0].TotalTrades)
	assert.Equal(t, 15, hourly[1].Hour)
}

func TestFilterByRange(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		tradeWithProfit("EURUSD", base.AddDate(0, 0, -2), 1),
		tradeWithProfit("EURUSD", base, 2),
		tradeWithProfit("EURUSD", base.AddDate(0, 0, 2), 3),
	}

	filtered := FilterByRange(trades, base, base.AddDate(0, 0, 1))
	assert.Len(t, filtered, 1)
	assert.Equal(t, 2.0, *filtered[0].Profit)

	// Zero bounds disable filtering on that side.
	assert.Len(t, FilterByRange(trades, base, time.Time{}), 2)
	assert.Len(t, FilterByRange(trades, time.Time{}, time.Time{}), 3)
}
