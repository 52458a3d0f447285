package journal

import (
	"testing"
	"time"

	"github.com/netgee-k/mt5-v2/internal/broker"
	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func openDeal(ticket, position int64, symbol, side string, at time.Time, price float64) broker.Deal {
	return broker.Deal{
		Ticket:     ticket,
		PositionID: position,
		Time:       at,
		Type:       side,
		Entry:      broker.DealEntryOpen,
		Symbol:     symbol,
		Volume:     1.0,
		Price:      price,
		Commission: -2.0,
	}
}

func closeDeal(ticket, position int64, symbol, side string, at time.Time, price, profit float64) broker.Deal {
	return broker.Deal{
		Ticket:     ticket,
		PositionID: position,
		Time:       at,
		Type:       side,
		Entry:      broker.DealEntryClose,
		Symbol:     symbol,
		Volume:     1.0,
		Price:      price,
		Commission: -2.0,
		Swap:       -0.5,
		Profit:     fptr(profit),
	}
}

func TestPairDealsSimplePair(t *testing.T) {
	open := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deals := []broker.Deal{
		closeDeal(102, 555, "EURUSD", "SELL", open.Add(45*time.Minute), 1.1050, 50.0),
		openDeal(101, 555, "EURUSD", "BUY", open, 1.1000),
	}

	trades := PairDeals(deals)

	assert.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, int64(102), tr.Ticket, "ticket must come from the closing deal")
	assert.Equal(t, int64(555), tr.PositionID)
	assert.Equal(t, "EURUSD", tr.Symbol)
	assert.Equal(t, "BUY", tr.Type, "side must come from the opening deal")
	assert.Equal(t, 1.1000, tr.OpenPrice)
	assert.Equal(t, open, tr.OpenTime)
	assert.Equal(t, 1.1050, *tr.ClosePrice)
	assert.Equal(t, open.Add(45*time.Minute), *tr.CloseTime)
	assert.Equal(t, 50.0, *tr.Profit)
	assert.Equal(t, -4.0, tr.Commission, "commission is the sum of both deals")
	assert.Equal(t, -0.5, tr.Swap)
}

func TestPairDealsPartialCloses(t *testing.T) {
	open := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deals := []broker.Deal{
		openDeal(201, 777, "GBPUSD", "BUY", open, 1.2500),
		closeDeal(202, 777, "GBPUSD", "SELL", open.Add(30*time.Minute), 1.2550, 25.0),
		closeDeal(203, 777, "GBPUSD", "SELL", open.Add(90*time.Minute), 1.2600, 50.0),
	}

	trades := PairDeals(deals)

	assert.Len(t, trades, 2, "one trade per closing leg")
	assert.Equal(t, int64(202), trades[0].Ticket)
	assert.Equal(t, int64(203), trades[1].Ticket)

	// Both legs share the opening deal's entry fields.
	for _, tr := range trades {
		assert.Equal(t, 1.2500, tr.OpenPrice)
		assert.Equal(t, open, tr.OpenTime)
	}

	// The opening commission belongs to the first leg only.
	assert.Equal(t, -4.0, trades[0].Commission)
	assert.Equal(t, -2.0, trades[1].Commission)
}

func TestPairDealsCloseOnlyFallback(t *testing.T) {
	at := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	deals := []broker.Deal{
		closeDeal(301, 888, "USDJPY", "SELL", at, 150.25, -12.0),
	}

	trades := PairDeals(deals)

	assert.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, tr.OpenTime, *tr.CloseTime, "closing deal doubles as the entry")
	assert.Equal(t, tr.OpenPrice, *tr.ClosePrice)
	assert.Equal(t, -12.0, *tr.Profit)
}

func TestPairDealsOpenOnlyNotEmitted(t *testing.T) {
	deals := []broker.Deal{
		openDeal(401, 999, "EURUSD", "BUY", time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC), 1.0900),
	}

	assert.Empty(t, PairDeals(deals), "a still-open position is not a trade")
}

func TestPairDealsIgnoresReversalDeals(t *testing.T) {
	open := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	reversal := openDeal(502, 600, "EURUSD", "SELL", open.Add(10*time.Minute), 1.1010)
	reversal.Entry = broker.DealEntryReverse

	deals := []broker.Deal{
		openDeal(501, 600, "EURUSD", "BUY", open, 1.1000),
		reversal,
		closeDeal(503, 600, "EURUSD", "SELL", open.Add(20*time.Minute), 1.1020, 20.0),
	}

	trades := PairDeals(deals)

	assert.Len(t, trades, 1)
	assert.Equal(t, 1.1000, trades[0].OpenPrice, "reversal deal must not replace the open")
}

func TestPairDealsDeterministicOrder(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deals := []broker.Deal{
		openDeal(11, 2, "EURUSD", "BUY", base.Add(1*time.Hour), 1.1000),
		closeDeal(12, 2, "EURUSD", "SELL", base.Add(5*time.Hour), 1.1010, 10.0),
		openDeal(21, 1, "GBPUSD", "BUY", base, 1.2500),
		closeDeal(22, 1, "GBPUSD", "SELL", base.Add(2*time.Hour), 1.2510, 10.0),
	}

	trades := PairDeals(deals)

	assert.Len(t, trades, 2)
	assert.Equal(t, int64(22), trades[0].Ticket, "output is ordered by close time")
	assert.Equal(t, int64(12), trades[1].Ticket)
}
