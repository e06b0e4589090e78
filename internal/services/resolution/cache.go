// Package resolution provides memoized instrument and metadata resolution.
//
// The cache is process-wide state: identifiers and sector classifications do
// not change within a session, so entries are never invalidated. Failed
// lookups are not cached — the next report attempt retries them.
package resolution

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mbaxter/folioview/internal/common"
	"github.com/mbaxter/folioview/internal/interfaces"
	"github.com/mbaxter/folioview/internal/models"
)

const (
	// DefaultWorkers bounds concurrent external lookups in a batch.
	DefaultWorkers = 10
	// DefaultFetchTimeout is the per-lookup deadline. A hung fetch stalls
	// only its own slot, never the whole process.
	DefaultFetchTimeout = 15 * time.Second
)

// fundNameFragments is the vocabulary used to infer the exchange-traded-fund
// flag from a display name when the market-data source yields no explicit
// asset-class signal.
var fundNameFragments = []string{
	"etf", "index", "fund", "trust",
	"ishares", "vanguard", "spdr", "invesco", "schwab", "proshares", "direxion",
}

// Cache memoizes instrument-identifier → symbol and symbol → metadata
// lookups. Both maps are guarded by their own mutex, held only for map
// access — external fetches happen outside the lock so concurrent fetches
// can proceed while the maps stay consistent.
type Cache struct {
	brokerage    interfaces.BrokerageClient
	market       interfaces.MarketDataClient
	logger       *common.Logger
	workers      int
	fetchTimeout time.Duration

	symbolMu sync.Mutex
	symbols  map[string]string // instrument id -> symbol

	metaMu   sync.Mutex
	metadata map[string]models.InstrumentMetadata // symbol -> metadata
}

// Option configures the cache
type Option func(*Cache)

// WithWorkers sets the batch worker-pool width
func WithWorkers(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFetchTimeout sets the per-lookup deadline
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a resolution cache backed by the given clients.
// Tests should supply a fresh instance per case rather than sharing one.
func NewCache(brokerage interfaces.BrokerageClient, market interfaces.MarketDataClient, opts ...Option) *Cache {
	c := &Cache{
		brokerage:    brokerage,
		market:       market,
		logger:       common.NewSilentLogger(),
		workers:      DefaultWorkers,
		fetchTimeout: DefaultFetchTimeout,
		symbols:      make(map[string]string),
		metadata:     make(map[string]models.InstrumentMetadata),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// cachedSymbol returns the memoized symbol for an identifier, if present.
func (c *Cache) cachedSymbol(id string) (string, bool) {
	c.symbolMu.Lock()
	defer c.symbolMu.Unlock()
	sym, ok := c.symbols[id]
	return sym, ok
}

func (c *Cache) storeSymbol(id, symbol string) {
	c.symbolMu.Lock()
	c.symbols[id] = symbol
	c.symbolMu.Unlock()
}

// ResolveInstrument resolves a single opaque instrument identifier to its
// ticker symbol, fetching from the brokerage at most once.
func (c *Cache) ResolveInstrument(ctx context.Context, id string) (string, error) {
	if sym, ok := c.cachedSymbol(id); ok {
		return sym, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	inst, err := c.brokerage.GetInstrument(fetchCtx, id)
	if err != nil {
		return "", err
	}

	c.storeSymbol(id, inst.Symbol)
	return inst.Symbol, nil
}

// ResolveInstruments resolves a batch of identifiers concurrently with a
// bounded worker pool, populating the cache before returning. The returned
// map holds every identifier that resolved; failing identifiers are simply
// absent — a single failed lookup never aborts the batch.
func (c *Cache) ResolveInstruments(ctx context.Context, ids []string) map[string]string {
	// Dedupe and drop already-cached identifiers
	pending := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := c.cachedSymbol(id); !ok {
			pending = append(pending, id)
		}
	}

	c.dispatch(ctx, len(pending), func(i int) {
		id := pending[i]
		if _, err := c.ResolveInstrument(ctx, id); err != nil {
			c.logger.Warn().Str("instrument", id).Err(err).Msg("Instrument resolution failed")
		}
	})

	// Collect results from the cache for every requested identifier
	resolved := make(map[string]string, len(seen))
	for id := range seen {
		if sym, ok := c.cachedSymbol(id); ok {
			resolved[id] = sym
		}
	}
	return resolved
}

// ResolveMetadata returns sector and asset-class metadata for a symbol.
// Successful lookups are memoized for the process lifetime; a failed fetch
// yields an inferred fallback that is returned but never cached, so the next
// call retries the source. When the source yields no explicit asset-class
// signal the ETF flag is inferred from the display name, and the sector
// falls back to the "Uncategorized" sentinel — never empty.
func (c *Cache) ResolveMetadata(ctx context.Context, symbol, fallbackName string) models.InstrumentMetadata {
	c.metaMu.Lock()
	if meta, ok := c.metadata[symbol]; ok {
		c.metaMu.Unlock()
		return meta
	}
	c.metaMu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	meta := models.InstrumentMetadata{Symbol: symbol, Name: fallbackName}

	profile, err := c.market.GetProfile(fetchCtx, symbol)
	if err != nil {
		// The caller still gets an inferred best-effort answer, but the
		// failure is not cached: the next report attempt retries the fetch.
		c.logger.Warn().Str("symbol", symbol).Err(err).Msg("Metadata lookup failed, inferring from name")
		meta.IsETF = looksLikeFund(fallbackName)
		meta.Sector = models.SectorUncategorized
		return meta
	}

	if profile == nil {
		meta.IsETF = looksLikeFund(fallbackName)
	} else {
		meta.Sector = profile.Sector
		meta.IsETF = profile.IsETF
		if profile.Name != "" {
			meta.Name = profile.Name
		}
		if !meta.IsETF && profile.Sector == "" {
			// No sector and no asset-class signal: fall back to the name
			meta.IsETF = looksLikeFund(meta.Name)
		}
	}

	if meta.Sector == "" {
		meta.Sector = models.SectorUncategorized
	}

	c.metaMu.Lock()
	c.metadata[symbol] = meta
	c.metaMu.Unlock()

	return meta
}

// ResolveAllMetadata resolves metadata for every symbol in names
// (symbol → fallback display name) concurrently and returns the results.
func (c *Cache) ResolveAllMetadata(ctx context.Context, names map[string]string) map[string]models.InstrumentMetadata {
	symbols := make([]string, 0, len(names))
	for sym := range names {
		symbols = append(symbols, sym)
	}

	// Collect the per-call answers rather than reading the cache back:
	// a failed fetch yields an uncached inferred fallback that the caller
	// must still see.
	metas := make([]models.InstrumentMetadata, len(symbols))
	c.dispatch(ctx, len(symbols), func(i int) {
		metas[i] = c.ResolveMetadata(ctx, symbols[i], names[symbols[i]])
	})

	result := make(map[string]models.InstrumentMetadata, len(symbols))
	for i, sym := range symbols {
		result[sym] = metas[i]
	}
	return result
}

// dispatch runs n independent tasks through the bounded worker pool and
// blocks until every task completes (full-barrier join).
func (c *Cache) dispatch(ctx context.Context, n int, task func(i int)) {
	if n == 0 {
		return
	}

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			task(i)
		}(i)
	}

	wg.Wait()
}

// looksLikeFund applies a case-insensitive substring match against the fund
// vocabulary to a display name.
func looksLikeFund(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, frag := range fundNameFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
