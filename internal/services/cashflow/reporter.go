package cashflow

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mbaxter/folioview/internal/models"
)

// MonthlySummary groups every cash-flow event by calendar month, summing
// buy magnitudes and sell amounts exactly (decimal arithmetic, no float
// drift across many small fills). Months are emitted in ascending order
// with a human-readable label; net = sell - buy.
func MonthlySummary(flows map[string]models.CashFlowSeries) []models.MonthlyCashFlow {
	type bucket struct {
		buy  decimal.Decimal
		sell decimal.Decimal
	}
	buckets := make(map[string]*bucket)

	for _, series := range flows {
		for _, f := range series {
			if len(f.Date) < 7 {
				continue
			}
			key := f.Date[:7] // "2006-01"
			b := buckets[key]
			if b == nil {
				b = &bucket{}
				buckets[key] = b
			}
			amount := decimal.NewFromFloat(f.Amount)
			if f.Amount < 0 {
				b.buy = b.buy.Add(amount.Neg())
			} else {
				b.sell = b.sell.Add(amount)
			}
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summary := make([]models.MonthlyCashFlow, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		net := b.sell.Sub(b.buy)
		summary = append(summary, models.MonthlyCashFlow{
			Month: key,
			Label: monthLabel(key),
			Buy:   b.buy.InexactFloat64(),
			Sell:  b.sell.InexactFloat64(),
			Net:   net.InexactFloat64(),
		})
	}
	return summary
}

// monthLabel renders a "2006-01" key as "Jan 2006". Unparseable keys are
// returned as-is rather than dropped.
func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// Transactions flattens every per-symbol event into one list sorted
// ascending by date. The sort is stable and keyed on date only, so
// same-date events keep their original per-symbol relative order.
func Transactions(flows map[string]models.CashFlowSeries) []models.TransactionRecord {
	symbols := make([]string, 0, len(flows))
	for sym := range flows {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var records []models.TransactionRecord
	for _, sym := range symbols {
		for _, f := range flows[sym] {
			records = append(records, models.TransactionRecord{
				Date:   f.Date,
				Symbol: sym,
				Amount: f.Amount,
			})
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})

	return records
}
