package models

import "time"

// CashFlow is a single dated, signed cash-flow event derived from an order
// fill. Negative = money out (buy), positive = money in (sell). Date is a
// calendar day in "2006-01-02" form with no time component.
type CashFlow struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// CashFlowSeries is a per-symbol chronological sequence of cash flows.
// Insertion order matches the forward-chronological order of the source
// orders. The sum of all amounts equals the negative of net investment.
type CashFlowSeries []CashFlow

// NetInvestment returns the total capital invested in the symbol, i.e. the
// negated sum of the series.
func (s CashFlowSeries) NetInvestment() float64 {
	sum := 0.0
	for _, f := range s {
		sum += f.Amount
	}
	return -sum
}

// HoldingRow is a single per-holding row of the portfolio report, joining
// the live snapshot with computed analytics. The benchmark comparison row
// reuses the same shape.
type HoldingRow struct {
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avgCost"`
	CurrentPrice float64 `json:"currentPrice"`
	Investment   float64 `json:"investment"`
	CurrentValue float64 `json:"currentValue"`
	ProfitLoss   float64 `json:"profitLoss"`
	XIRR         float64 `json:"xirr"`
	Sector       string  `json:"sector,omitempty"`
	IsETF        bool    `json:"isEtf,omitempty"`
	TimeHeld     string  `json:"timeHeld"`
}

// HistoryPoint is one weekly sample of the reconstructed equity curve:
// cumulative portfolio investment alongside the mark-to-market value of an
// equivalent benchmark investment.
type HistoryPoint struct {
	Date                string  `json:"date"`
	Portfolio           float64 `json:"portfolio"`
	Benchmark           float64 `json:"benchmark"`
	PortfolioInvestment float64 `json:"portfolioInvestment"`
	BenchmarkInvestment float64 `json:"benchmarkInvestment"`
}

// MonthlyCashFlow summarizes all cash flows in one calendar month.
// Buy and Sell are magnitudes; Net = Sell - Buy.
type MonthlyCashFlow struct {
	Month string  `json:"month"` // "2006-01" sort key
	Label string  `json:"label"` // "Jan 2006"
	Buy   float64 `json:"buy"`
	Sell  float64 `json:"sell"`
	Net   float64 `json:"net"`
}

// TransactionRecord is one normalized entry of the flat, date-sorted
// transaction list.
type TransactionRecord struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// PortfolioReport is the aggregate analytics output for an account.
type PortfolioReport struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	StartDate   string    `json:"start_date"`

	Holdings  []HoldingRow   `json:"stocks"`
	Benchmark *HoldingRow    `json:"benchmark,omitempty"`
	History   []HistoryPoint `json:"historicalData"`

	MonthlyCashFlows []MonthlyCashFlow   `json:"monthlyCashFlows"`
	Transactions     []TransactionRecord `json:"transactions"`

	TotalInvestment   float64 `json:"totalInvestment"`
	TotalCurrentValue float64 `json:"totalCurrentValue"`
	TotalProfitLoss   float64 `json:"totalProfitLoss"`
	OverallXIRR       float64 `json:"overallXirr"`
}
