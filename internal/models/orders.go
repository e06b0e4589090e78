// Package models defines data structures for FolioView
package models

// Order states and sides as delivered by the brokerage order feed.
const (
	OrderStateFilled = "filled"
	OrderSideBuy     = "buy"
	OrderSideSell    = "sell"
)

// Fill is a single partial or complete settlement belonging to a parent
// order, carrying its own timestamp and notional value.
type Fill struct {
	Timestamp string  `json:"timestamp"`
	Notional  float64 `json:"notional"`
}

// Order is a raw brokerage order record. The order feed delivers these in
// reverse-chronological order; InstrumentID is an opaque identifier that must
// be resolved to a ticker symbol before use.
type Order struct {
	InstrumentID      string `json:"instrument_id"`
	Side              string `json:"side"`
	State             string `json:"state"`
	LastTransactionAt string `json:"last_transaction_at"`
	Fills             []Fill `json:"fills"`
}

// Filled reports whether the order reached a terminal filled state.
func (o Order) Filled() bool {
	return o.State == OrderStateFilled
}

// AccountPosition is a live holdings-snapshot row from the brokerage.
// It is sourced externally and combined with analytics results, never
// recomputed from the cash-flow log.
type AccountPosition struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avg_cost"`
	CurrentPrice float64 `json:"current_price"`
	Equity       float64 `json:"equity"`
}
