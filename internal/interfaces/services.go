package interfaces

import (
	"context"

	"github.com/mbaxter/folioview/internal/models"
)

// ReportService produces portfolio analytics reports
type ReportService interface {
	// BuildReport computes the full portfolio report: per-holding and
	// aggregate XIRR, benchmark comparison, historical curve, and cash-flow
	// summaries. Only a holdings-snapshot failure is fatal; all per-symbol
	// and per-section failures degrade gracefully.
	BuildReport(ctx context.Context) (*models.PortfolioReport, error)

	// RenderHistoryChart renders the reconstructed equity curve as a PNG
	RenderHistoryChart(ctx context.Context) ([]byte, error)
}
