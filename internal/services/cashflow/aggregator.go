// Package cashflow converts raw order history into per-symbol cash-flow
// series and derived summaries.
package cashflow

import (
	"context"
	"strings"
	"time"

	"github.com/mbaxter/folioview/internal/common"
	"github.com/mbaxter/folioview/internal/models"
	"github.com/mbaxter/folioview/internal/services/resolution"
)

// Timestamp layouts accepted for an order's last-transaction time: trailing
// "Z" without and with fractional seconds. Anything else is a data-quality
// defect — the record is skipped with a warning and contributes nothing to
// age calculation.
var lastTransactionLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z",
}

// Aggregator builds cash-flow series from raw orders, resolving instrument
// identifiers through the shared resolution cache.
type Aggregator struct {
	cache  *resolution.Cache
	logger *common.Logger
	now    func() time.Time
}

// NewAggregator creates a cash-flow aggregator.
func NewAggregator(cache *resolution.Cache, logger *common.Logger) *Aggregator {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Aggregator{
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the aggregator's clock. Tests use this to pin "today".
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Result is the aggregated view of an account's order history.
type Result struct {
	// Flows holds the per-symbol chronological cash-flow series. A symbol
	// that appeared in any order has a key here even if no order filled, so
	// holdings without filled orders never miss downstream lookups.
	Flows map[string]models.CashFlowSeries

	// EarliestBySymbol is the earliest last-transaction time per symbol.
	EarliestBySymbol map[string]time.Time

	// Earliest is the global earliest activity date, or "now" when the
	// order history is empty.
	Earliest time.Time

	// Ages holds per-symbol holding-age strings
	// ("<years> years <months> months <days> days").
	Ages map[string]string
}

// Aggregate processes raw orders into per-symbol cash-flow series.
//
// The source delivers orders reverse-chronologically; they are reversed into
// forward chronological order first so that insertion order equals event
// order for every ordering-sensitive consumer. Only filled orders contribute
// cash flows: each fill becomes a (calendar day, signed amount) pair with
// buys negated. Identifiers that fail to resolve are skipped.
func (a *Aggregator) Aggregate(ctx context.Context, orders []models.Order) *Result {
	now := a.now()
	result := &Result{
		Flows:            make(map[string]models.CashFlowSeries),
		EarliestBySymbol: make(map[string]time.Time),
		Earliest:         now,
		Ages:             make(map[string]string),
	}

	// Oldest first
	ordered := make([]models.Order, len(orders))
	for i, o := range orders {
		ordered[len(orders)-1-i] = o
	}

	// Resolve all instrument identifiers up front in one concurrent batch
	ids := make([]string, 0, len(ordered))
	for _, o := range ordered {
		ids = append(ids, o.InstrumentID)
	}
	symbols := a.cache.ResolveInstruments(ctx, ids)

	haveEarliest := false
	for _, o := range ordered {
		symbol, ok := symbols[o.InstrumentID]
		if !ok {
			a.logger.Warn().Str("instrument", o.InstrumentID).Msg("Skipping order with unresolved instrument")
			continue
		}

		// Register the symbol even when the order contributes no cash flow
		if _, exists := result.Flows[symbol]; !exists {
			result.Flows[symbol] = models.CashFlowSeries{}
		}

		if !o.Filled() {
			continue
		}

		for _, fill := range o.Fills {
			day, ok := fillDay(fill.Timestamp)
			if !ok {
				a.logger.Warn().Str("symbol", symbol).Str("timestamp", fill.Timestamp).Msg("Skipping fill with malformed timestamp")
				continue
			}
			amount := fill.Notional
			if o.Side == models.OrderSideBuy {
				amount = -amount
			}
			result.Flows[symbol] = append(result.Flows[symbol], models.CashFlow{Date: day, Amount: amount})
		}

		ts, ok := parseLastTransaction(o.LastTransactionAt)
		if !ok {
			a.logger.Warn().Str("symbol", symbol).Str("timestamp", o.LastTransactionAt).Msg("Skipping unparseable last-transaction timestamp")
			continue
		}

		if prev, exists := result.EarliestBySymbol[symbol]; !exists || ts.Before(prev) {
			result.EarliestBySymbol[symbol] = ts
		}
		if !haveEarliest || ts.Before(result.Earliest) {
			result.Earliest = ts
			haveEarliest = true
		}
	}

	for symbol, earliest := range result.EarliestBySymbol {
		result.Ages[symbol] = common.FormatAge(earliest, now)
	}

	return result
}

// parseLastTransaction attempts the two known timestamp formats in order.
func parseLastTransaction(s string) (time.Time, bool) {
	for _, layout := range lastTransactionLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fillDay extracts the calendar-day portion of a fill timestamp.
func fillDay(ts string) (string, bool) {
	i := strings.IndexByte(ts, 'T')
	if i < 0 {
		return "", false
	}
	day := ts[:i]
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return "", false
	}
	return day, true
}
