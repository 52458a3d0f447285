package journal

import (
	"sort"

	"github.com/netgee-k/mt5-v2/internal/broker"
	"github.com/netgee-k/mt5-v2/internal/models"
)

// position collects the deals recorded against one position id.
type position struct {
	opens  []broker.Deal
	closes []broker.Deal
}

// PairDeals reconciles an unordered collection of broker deals into logical
// trades by matching opening and closing deals that share a position id.
//
// A position with an open and one or more closes emits one trade per closing
// deal: partial closes are modelled as separate legs against the same open,
// with the opening deal's commission attributed to the first leg only so it
// is never counted twice. A position with only closing deals (the open fell
// outside the queried window) emits a degraded trade that uses the closing
// deal for both entry and exit; this is a documented fallback, not an error.
// A position with only an opening deal is still live and is not emitted.
//
// Pure function: no side effects, deterministic output order (by closing
// deal time, then ticket).
func PairDeals(deals []broker.Deal) []models.Trade {
	positions := make(map[int64]*position)
	order := make([]int64, 0)

	for _, d := range deals {
		p, ok := positions[d.PositionID]
		if !ok {
			p = &position{}
			positions[d.PositionID] = p
			order = append(order, d.PositionID)
		}
		switch d.Entry {
		case broker.DealEntryOpen:
			p.opens = append(p.opens, d)
		case broker.DealEntryClose:
			p.closes = append(p.closes, d)
		default:
			// Reversals and close-by deals are not journalled.
		}
	}

	var trades []models.Trade
	for _, id := range order {
		p := positions[id]
		if len(p.closes) == 0 {
			continue // still-open position
		}

		sort.Slice(p.closes, func(i, j int) bool {
			if p.closes[i].Time.Equal(p.closes[j].Time) {
				return p.closes[i].Ticket < p.closes[j].Ticket
			}
			return p.closes[i].Time.Before(p.closes[j].Time)
		})

		if len(p.opens) == 0 {
			for _, c := range p.closes {
				trades = append(trades, degradedTrade(id, c))
			}
			continue
		}

		open := earliestOpen(p.opens)
		for i, c := range p.closes {
			t := pairedTrade(id, open, c)
			if i > 0 {
				// The opening commission already went to the first leg.
				t.Commission = c.Commission
			}
			trades = append(trades, t)
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		ti, tj := trades[i], trades[j]
		ci, cj := *ti.CloseTime, *tj.CloseTime
		if ci.Equal(cj) {
			return ti.Ticket < tj.Ticket
		}
		return ci.Before(cj)
	})
	return trades
}

func earliestOpen(opens []broker.Deal) broker.Deal {
	open := opens[0]
	for _, d := range opens[1:] {
		if d.Time.Before(open.Time) {
			open = d
		}
	}
	return open
}

// pairedTrade builds a trade from a matched open/close pair: entry price,
// time and side come from the opening deal; exit price, time, profit and
// swap from the closing deal.
func pairedTrade(positionID int64, open, close broker.Deal) models.Trade {
	closeTime := close.Time
	closePrice := close.Price

	comment := close.Comment
	if comment == "" {
		comment = open.Comment
	}

	sl := open.StopLoss
	tp := open.TakeProfit
	if sl == nil {
		sl = close.StopLoss
	}
	if tp == nil {
		tp = close.TakeProfit
	}

	return models.Trade{
		Ticket:     close.Ticket,
		PositionID: positionID,
		Symbol:     open.Symbol,
		Type:       open.Type,
		Volume:     close.Volume,
		OpenTime:   open.Time,
		OpenPrice:  open.Price,
		CloseTime:  &closeTime,
		ClosePrice: &closePrice,
		StopLoss:   sl,
		TakeProfit: tp,
		Commission: open.Commission + close.Commission,
		Swap:       close.Swap,
		Profit:     close.Profit,
		Comment:    comment,
	}
}

// degradedTrade builds a trade from an unmatched closing deal. The closing
// deal supplies both entry and exit, so duration and pip distance derive
// to zero.
func degradedTrade(positionID int64, close broker.Deal) models.Trade {
	closeTime := close.Time
	closePrice := close.Price

	return models.Trade{
		Ticket:     close.Ticket,
		PositionID: positionID,
		Symbol:     close.Symbol,
		Type:       close.Type,
		Volume:     close.Volume,
		OpenTime:   close.Time,
		OpenPrice:  close.Price,
		CloseTime:  &closeTime,
		ClosePrice: &closePrice,
		StopLoss:   close.StopLoss,
		TakeProfit: close.TakeProfit,
		Commission: close.Commission,
		Swap:       close.Swap,
		Profit:     close.Profit,
		Comment:    close.Comment,
	}
}
