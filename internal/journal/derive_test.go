package journal

import (
	"testing"
	"time"

	"github.com/netgee-k/mt5-v2/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDerivePips(t *testing.T) {
	testCases := []struct {
		name       string
		side       string
		openPrice  float64
		closePrice float64
		expected   float64
	}{
		{
			name:       "Buy trade gains pips when price rises",
			side:       models.SideBuy,
			openPrice:  1.1000,
			closePrice: 1.1050,
			expected:   50.0,
		},
		{
			name:       "Sell trade gains pips when price falls",
			side:       models.SideSell,
			openPrice:  1.2000,
			closePrice: 1.1950,
			expected:   50.0,
		},
		{
			name:       "Buy trade loses pips when price falls",
			side:       models.SideBuy,
			openPrice:  1.1000,
			closePrice: 1.0980,
			expected:   -20.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			open := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
			close := open.Add(time.Hour)
			trade := models.Trade{
				Type:       tc.side,
				OpenTime:   open,
				OpenPrice:  tc.openPrice,
				CloseTime:  &close,
				ClosePrice: fptr(tc.closePrice),
			}

			Derive(&trade, DefaultPipMultiplier)

			assert.NotNil(t, trade.Pips)
			assert.InDelta(t, tc.expected, *trade.Pips, 1e-9)
		})
	}
}

func TestDeriveDurationFloorsToWholeMinutes(t *testing.T) {
	open := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	close := open.Add(45*time.Minute + 59*time.Second)
	trade := models.Trade{
		Type:       models.SideBuy,
		OpenTime:   open,
		OpenPrice:  1.1,
		CloseTime:  &close,
		ClosePrice: fptr(1.2),
	}

	Derive(&trade, DefaultPipMultiplier)

	assert.NotNil(t, trade.DurationMinutes)
	assert.Equal(t, 45, *trade.DurationMinutes)
}

func TestDeriveWinFlag(t *testing.T) {
	open := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	close := open.Add(time.Hour)

	winning := models.Trade{Type: models.SideBuy, OpenTime: open, OpenPrice: 1.1,
		CloseTime: &close, ClosePrice: fptr(1.2), Profit: fptr(10.0)}
	losing := models.Trade{Type: models.SideBuy, OpenTime: open, OpenPrice: 1.1,
		CloseTime: &close, ClosePrice: fptr(1.0), Profit: fptr(-10.0)}
	breakEven := models.Trade{Type: models.SideBuy, OpenTime: open, OpenPrice: 1.1,
		CloseTime: &close, ClosePrice: fptr(1.1), Profit: fptr(0.0)}

	Derive(&winning, DefaultPipMultiplier)
	Derive(&losing, DefaultPipMultiplier)
	Derive(&breakEven, DefaultPipMultiplier)

	assert.True(t, *winning.Win)
	assert.False(t, *losing.Win)
	assert.False(t, *breakEven.Win, "zero profit is not a win")
}

func TestDeriveDegradedTradeIsZeroed(t *testing.T) {
	at := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	trade := models.Trade{
		Type:       models.SideSell,
		OpenTime:   at,
		OpenPrice:  150.25,
		CloseTime:  &at,
		ClosePrice: fptr(150.25),
		Profit:     fptr(-12.0),
	}

	Derive(&trade, DefaultPipMultiplier)

	assert.Equal(t, 0, *trade.DurationMinutes)
	assert.InDelta(t, 0.0, *trade.Pips, 1e-9)
	assert.False(t, *trade.Win)
}

func TestDeriveOverwritesStaleFields(t *testing.T) {
	stale := 99
	trade := models.Trade{
		Type:            models.SideBuy,
		OpenTime:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		OpenPrice:       1.1,
		DurationMinutes: &stale,
		Pips:            fptr(123),
		Win:             func() *bool { v := true; return &v }(),
	}

	// Still-open trade: no close data, no profit.
	Derive(&trade, DefaultPipMultiplier)

	assert.Nil(t, trade.DurationMinutes)
	assert.Nil(t, trade.Pips)
	assert.Nil(t, trade.Win)
}
