// Package report assembles the full portfolio analytics report.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mbaxter/folioview/internal/common"
	"github.com/mbaxter/folioview/internal/interfaces"
	"github.com/mbaxter/folioview/internal/models"
	"github.com/mbaxter/folioview/internal/services/analytics"
	"github.com/mbaxter/folioview/internal/services/cashflow"
	"github.com/mbaxter/folioview/internal/services/resolution"
)

// Service implements interfaces.ReportService. All analytics run
// single-threaded over the aggregated data; the only concurrency is inside
// the resolution cache's batch lookups.
type Service struct {
	brokerage  interfaces.BrokerageClient
	market     interfaces.MarketDataClient
	cache      *resolution.Cache
	aggregator *cashflow.Aggregator
	logger     *common.Logger

	benchmarkSymbol string
	benchmarkName   string
	now             func() time.Time
}

// Option configures the report service
type Option func(*Service)

// WithBenchmark sets the reference index used for comparison
func WithBenchmark(symbol, name string) Option {
	return func(s *Service) {
		s.benchmarkSymbol = symbol
		s.benchmarkName = name
	}
}

// WithClock overrides the service clock (tests pin "today" with this)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a report service
func NewService(
	brokerage interfaces.BrokerageClient,
	market interfaces.MarketDataClient,
	cache *resolution.Cache,
	logger *common.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Service{
		brokerage:       brokerage,
		market:          market,
		cache:           cache,
		logger:          logger,
		benchmarkSymbol: "^GSPC",
		benchmarkName:   "S&P 500 Index",
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator = cashflow.NewAggregator(cache, logger).WithClock(s.now)
	return s
}

// BuildReport produces the aggregate portfolio report. Only a failure to
// obtain the live holdings snapshot is fatal; every per-symbol and
// per-section failure degrades to an omitted entry or empty section.
func (s *Service) BuildReport(ctx context.Context) (*models.PortfolioReport, error) {
	now := s.now()

	positions, err := s.brokerage.GetPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings snapshot: %w", err)
	}

	orders, err := s.brokerage.GetAllStockOrders(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Order history unavailable, reporting holdings only")
		orders = nil
	}

	agg := s.aggregator.Aggregate(ctx, orders)

	// Sector/asset-class metadata for held symbols, resolved concurrently
	names := make(map[string]string, len(positions))
	for _, p := range positions {
		names[p.Symbol] = p.Name
	}
	metadata := s.cache.ResolveAllMetadata(ctx, names)

	rows := make([]models.HoldingRow, 0, len(positions))
	var totalInvestment, totalCurrentValue float64

	for _, p := range positions {
		flows := agg.Flows[p.Symbol]
		investment := flows.NetInvestment()

		rate := analytics.SolveWithTerminal(analytics.ParseFlows(flows), p.Equity, now)

		age := agg.Ages[p.Symbol]
		if age == "" {
			age = "N/A"
		}

		meta := metadata[p.Symbol]
		rows = append(rows, models.HoldingRow{
			Name:         p.Name,
			Symbol:       p.Symbol,
			Quantity:     p.Quantity,
			AvgCost:      p.AvgCost,
			CurrentPrice: p.CurrentPrice,
			Investment:   investment,
			CurrentValue: p.Equity,
			ProfitLoss:   p.Equity - investment,
			XIRR:         rate.RateOrZero(),
			Sector:       meta.Sector,
			IsETF:        meta.IsETF,
			TimeHeld:     age,
		})

		totalInvestment += investment
		totalCurrentValue += p.Equity
	}

	// Aggregate XIRR over every symbol's flows (including fully sold
	// positions) with one terminal flow for total current value
	var allFlows []analytics.CashFlow
	for _, series := range agg.Flows {
		allFlows = append(allFlows, analytics.ParseFlows(series)...)
	}
	overall := analytics.SolveWithTerminal(allFlows, totalCurrentValue, now)

	bars := s.benchmarkHistory(ctx, agg.Earliest, now)

	report := &models.PortfolioReport{
		ID:                uuid.NewString(),
		GeneratedAt:       now,
		StartDate:         agg.Earliest.Format("2006-01-02"),
		Holdings:          rows,
		Benchmark:         s.benchmarkRow(totalInvestment, agg.Earliest, now, bars),
		History:           analytics.Reconstruct(agg.Flows, agg.Earliest, now, bars),
		MonthlyCashFlows:  cashflow.MonthlySummary(agg.Flows),
		Transactions:      cashflow.Transactions(agg.Flows),
		TotalInvestment:   totalInvestment,
		TotalCurrentValue: totalCurrentValue,
		TotalProfitLoss:   totalCurrentValue - totalInvestment,
		OverallXIRR:       overall.RateOrZero(),
	}

	// Empty sections serialize as arrays, not null
	if report.History == nil {
		report.History = []models.HistoryPoint{}
	}
	if report.MonthlyCashFlows == nil {
		report.MonthlyCashFlows = []models.MonthlyCashFlow{}
	}
	if report.Transactions == nil {
		report.Transactions = []models.TransactionRecord{}
	}

	s.logger.Info().
		Str("report", report.ID).
		Int("holdings", len(rows)).
		Int("transactions", len(report.Transactions)).
		Float64("total_investment", totalInvestment).
		Msg("Portfolio report built")

	return report, nil
}

// RenderHistoryChart renders the reconstructed equity curve as a PNG.
func (s *Service) RenderHistoryChart(ctx context.Context) ([]byte, error) {
	report, err := s.BuildReport(ctx)
	if err != nil {
		return nil, err
	}
	return RenderChart(report.History)
}

// benchmarkHistory fetches the reference-index price series for the holding
// period. Failure degrades to "no comparison available".
func (s *Service) benchmarkHistory(ctx context.Context, from, to time.Time) []models.PriceBar {
	bars, err := s.market.GetDailyHistory(ctx, s.benchmarkSymbol, from, to)
	if err != nil {
		s.logger.Warn().Str("symbol", s.benchmarkSymbol).Err(err).Msg("Benchmark history unavailable")
		return nil
	}
	return bars
}

// benchmarkRow runs the SIP simulation and shapes it as a holding row, or
// returns nil when no comparison is available.
func (s *Service) benchmarkRow(totalInvestment float64, start, now time.Time, bars []models.PriceBar) *models.HoldingRow {
	sim := analytics.SimulateSIP(totalInvestment, start, now, bars)
	if sim == nil {
		return nil
	}
	return &models.HoldingRow{
		Name:         s.benchmarkName,
		Symbol:       s.benchmarkSymbol,
		Quantity:     sim.Shares,
		AvgCost:      sim.AvgCost(),
		CurrentPrice: sim.CurrentPrice,
		Investment:   sim.Invested,
		CurrentValue: sim.CurrentValue,
		ProfitLoss:   sim.CurrentValue - sim.Invested,
		XIRR:         sim.XIRR.RateOrZero(),
		TimeHeld:     common.FormatAge(start, now),
	}
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
