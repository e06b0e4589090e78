package analytics

import (
	"sort"
	"time"

	"github.com/mbaxter/folioview/internal/common"
	"github.com/mbaxter/folioview/internal/models"
)

// Simulation holds the outcome of a dollar-cost-averaging simulation into
// the reference index: the position it would have built and its XIRR.
type Simulation struct {
	Shares       float64
	Invested     float64
	CurrentPrice float64
	CurrentValue float64
	XIRR         Result
}

// AvgCost returns the average purchase price across the simulation, or 0
// when no shares were bought.
func (s *Simulation) AvgCost() float64 {
	if s.Shares <= 0 {
		return 0
	}
	return s.Invested / s.Shares
}

// SimulateSIP answers "how would a systematic monthly investment of the same
// total capital have performed in the reference index over the same period?"
//
// The total is split into equal contributions over the elapsed whole months
// (floored at 1), invested at the first available price on or after each
// monthly step from start until today. Returns nil when there is nothing to
// compare: zero or negative total investment, or no benchmark history.
func SimulateSIP(totalInvestment float64, start, now time.Time, bars []models.PriceBar) *Simulation {
	if totalInvestment <= 0 || len(bars) == 0 {
		return nil
	}

	months := common.ElapsedMonths(start, now)
	monthly := totalInvestment / float64(months)

	var (
		shares   float64
		invested float64
		flows    []CashFlow
	)

	// Step by exactly one calendar month, not a fixed day count
	for cur := start; !cur.After(now); cur = cur.AddDate(0, 1, 0) {
		price, ok := firstCloseOnOrAfter(bars, cur)
		if !ok {
			continue
		}
		shares += monthly / price
		invested += monthly
		flows = append(flows, CashFlow{Date: cur, Amount: -monthly})
	}

	if invested == 0 {
		return nil
	}

	currentPrice := bars[len(bars)-1].Close
	currentValue := shares * currentPrice
	flows = append(flows, CashFlow{Date: now, Amount: currentValue})

	return &Simulation{
		Shares:       shares,
		Invested:     invested,
		CurrentPrice: currentPrice,
		CurrentValue: currentValue,
		XIRR:         Solve(flows),
	}
}

// firstCloseOnOrAfter returns the closing price of the first bar dated on or
// after d. bars must be ordered ascending by date.
func firstCloseOnOrAfter(bars []models.PriceBar, d time.Time) (float64, bool) {
	i := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Date.Before(d)
	})
	if i == len(bars) {
		return 0, false
	}
	return bars[i].Close, true
}
