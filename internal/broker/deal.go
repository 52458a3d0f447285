package broker

import "time"

// Deal entry kinds as reported by the MT5 terminal.
// 0=open, 1=close, 2=reverse, 3=close-by.
type DealEntry int

const (
	DealEntryOpen    DealEntry = 0
	DealEntryClose   DealEntry = 1
	DealEntryReverse DealEntry = 2
	DealEntryCloseBy DealEntry = 3
)

// Deal is an atomic broker ledger entry for a single fill. It is immutable
// input sourced from the terminal; optional fields that the terminal may not
// report (stop loss, take profit, profit on opening deals) are pointers, so
// absence is typed rather than a zero that looks like data.
type Deal struct {
	Ticket     int64
	PositionID int64
	Time       time.Time
	Type       string // "BUY" or "SELL"
	Entry      DealEntry
	Symbol     string
	Volume     float64
	Price      float64
	Commission float64
	Swap       float64
	Profit     *float64 // present on closing deals only
	StopLoss   *float64
	TakeProfit *float64
	Comment    string
}

// dealPayload is the wire representation used by the bridge terminal,
// mirroring the MT5 TradeDeal structure.
type dealPayload struct {
	Ticket     int64    `json:"ticket"`
	PositionID int64    `json:"position_id"`
	Time       int64    `json:"time"` // unix seconds, UTC
	Type       int      `json:"type"` // 0=buy, 1=sell
	Entry      int      `json:"entry"`
	Symbol     string   `json:"symbol"`
	Volume     float64  `json:"volume"`
	Price      float64  `json:"price"`
	Commission float64  `json:"commission"`
	Swap       float64  `json:"swap"`
	Profit     *float64 `json:"profit,omitempty"`
	SL         *float64 `json:"sl,omitempty"`
	TP         *float64 `json:"tp,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

// toDeal maps a wire payload into the typed Deal used by the journal core.
func (p *dealPayload) toDeal() Deal {
	side := "BUY"
	if p.Type == 1 {
		side = "SELL"
	}

	return Deal{
		Ticket:     p.Ticket,
		PositionID: p.PositionID,
		Time:       time.Unix(p.Time, 0).UTC(),
		Type:       side,
		Entry:      DealEntry(p.Entry),
		Symbol:     p.Symbol,
		Volume:     p.Volume,
		Price:      p.Price,
		Commission: p.Commission,
		Swap:       p.Swap,
		Profit:     p.Profit,
		StopLoss:   p.SL,
		TakeProfit: p.TP,
		Comment:    p.Comment,
	}
}
