package journal

import "github.com/netgee-k/mt5-v2/internal/models"

// DefaultPipMultiplier converts price distance to pips for 4/5-decimal
// forex quotes. It is numerically wrong for JPY pairs and non-forex
// instruments; callers can override it through configuration, the
// approximation itself is a documented limitation.
const DefaultPipMultiplier = 10000

// Derive computes the derived fields of a trade from its raw fields:
// duration in whole minutes, pip distance and the win flag. All three are
// overwritten together on every call, so a resync can never leave a stale
// derived field next to a fresh raw one. A nil derived field means the
// input required to compute it was absent.
func Derive(t *models.Trade, pipMultiplier float64) {
	t.DurationMinutes = nil
	t.Pips = nil
	t.Win = nil

	if t.CloseTime != nil {
		minutes := int(t.CloseTime.Sub(t.OpenTime).Seconds() / 60)
		t.DurationMinutes = &minutes
	}

	if t.ClosePrice != nil && t.OpenPrice != 0 {
		var pips float64
		if t.Type == models.SideBuy {
			pips = (*t.ClosePrice - t.OpenPrice) * pipMultiplier
		} else {
			pips = (t.OpenPrice - *t.ClosePrice) * pipMultiplier
		}
		t.Pips = &pips
	}

	if t.Profit != nil {
		win := *t.Profit > 0
		t.Win = &win
	}
}
