// Package interfaces defines client and service contracts for FolioView
package interfaces

import (
	"context"
	"time"

	"github.com/mbaxter/folioview/internal/models"
)

// BrokerageClient provides access to the brokerage account. Implementations
// treat the wire protocol as opaque; the rest of the system only sees the
// models types.
type BrokerageClient interface {
	// GetAllStockOrders retrieves the full order history,
	// reverse-chronological (most recent first) as delivered by the source
	GetAllStockOrders(ctx context.Context) ([]models.Order, error)

	// GetInstrument resolves an opaque instrument identifier to a symbol
	GetInstrument(ctx context.Context, id string) (*models.Instrument, error)

	// GetPositions retrieves the live holdings snapshot
	GetPositions(ctx context.Context) ([]models.AccountPosition, error)
}

// MarketDataClient provides market data for symbols
type MarketDataClient interface {
	// GetDailyHistory retrieves daily closing prices for [from, to],
	// ordered ascending by date
	GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)

	// GetProfile retrieves sector and asset-class metadata for a symbol
	GetProfile(ctx context.Context, symbol string) (*models.InstrumentMetadata, error)
}
