package analytics

import (
	"sort"
	"time"

	"github.com/mbaxter/folioview/internal/models"
)

// historyLabelFormat renders sample dates for charting.
const historyLabelFormat = "Jan 02, 2006"

type datedFlow struct {
	date   time.Time
	amount float64
}

// Reconstruct produces a weekly-sampled equity curve by replaying the merged
// cash-flow log against benchmark pricing. At each 7-day step every
// not-yet-applied transaction dated on or before the cursor adds its
// absolute magnitude to cumulative invested capital and buys benchmark
// shares at the first available price on or after the transaction date.
//
// Each transaction is applied exactly once, by identity: the merged stream
// is date-sorted and consumed through a cursor, so multiple transactions
// sharing a calendar day are all applied individually.
//
// No sample is emitted before any capital has been invested; an empty
// benchmark series yields an empty curve.
func Reconstruct(flows map[string]models.CashFlowSeries, start, now time.Time, bars []models.PriceBar) []models.HistoryPoint {
	if len(bars) == 0 {
		return nil
	}

	// Merge all symbols' events into one stream. Symbol-major concatenation
	// is not globally ordered, so re-sort by date (stable, preserving
	// per-symbol relative order for same-date events).
	merged := mergeFlows(flows)

	var (
		points        []models.HistoryPoint
		cursor        int
		cumulative    float64 // portfolio capital invested to date
		benchShares   float64
		benchInvested float64
	)

	for cur := start; !cur.After(now); cur = cur.AddDate(0, 0, 7) {
		for cursor < len(merged) && !merged[cursor].date.After(cur) {
			tx := merged[cursor]
			cursor++

			magnitude := tx.amount
			if magnitude < 0 {
				magnitude = -magnitude
			}
			cumulative += magnitude

			if price, ok := firstCloseOnOrAfter(bars, tx.date); ok {
				benchShares += magnitude / price
				benchInvested += magnitude
			}
		}

		price, ok := firstCloseOnOrAfter(bars, cur)
		if !ok || cumulative <= 0 {
			continue
		}

		points = append(points, models.HistoryPoint{
			Date:                cur.Format(historyLabelFormat),
			Portfolio:           cumulative,
			Benchmark:           benchShares * price,
			PortfolioInvestment: cumulative,
			BenchmarkInvestment: benchInvested,
		})
	}

	return points
}

// mergeFlows flattens per-symbol series into one date-sorted stream,
// dropping events whose date does not parse.
func mergeFlows(flows map[string]models.CashFlowSeries) []datedFlow {
	var merged []datedFlow

	symbols := make([]string, 0, len(flows))
	for sym := range flows {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		for _, f := range flows[sym] {
			d, err := time.Parse("2006-01-02", f.Date)
			if err != nil {
				continue
			}
			merged = append(merged, datedFlow{date: d, amount: f.Amount})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].date.Before(merged[j].date)
	})

	return merged
}
