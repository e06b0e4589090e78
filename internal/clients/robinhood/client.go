// Package robinhood provides a client for the brokerage API. The wire
// protocol is treated as an opaque data source; only the models types leak
// out of this package.
package robinhood

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mbaxter/folioview/internal/common"
	"github.com/mbaxter/folioview/internal/interfaces"
	"github.com/mbaxter/folioview/internal/models"
)

const (
	DefaultBaseURL   = "https://api.robinhood.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// DefaultMaxOrderPages caps cursor pagination on the order feed.
	DefaultMaxOrderPages = 50
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the BrokerageClient interface
type Client struct {
	baseURL       string
	token         string
	httpClient    *http.Client
	logger        *common.Logger
	limiter       *rate.Limiter
	maxOrderPages int
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxOrderPages raises or lowers the order-feed pagination cap.
// Accounts with long histories need more than the default 50 pages.
func WithMaxOrderPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxOrderPages = n
		}
	}
}

// NewClient creates a new brokerage client. The token is an existing session
// credential; this package performs no login handshake and never persists it.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:       rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:        common.NewSilentLogger(),
		maxOrderPages: DefaultMaxOrderPages,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brokerage API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited, authenticated GET request. reqURL may be a
// path relative to the base URL or an absolute URL (instrument references
// arrive as full URLs).
func (c *Client) get(ctx context.Context, reqURL string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if !strings.HasPrefix(reqURL, "http") {
		reqURL = c.baseURL + reqURL
	}
	if len(params) > 0 {
		reqURL = reqURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug().Str("url", reqURL).Msg("Brokerage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   reqURL,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type executionResponse struct {
	Timestamp       string      `json:"timestamp"`
	RoundedNotional flexFloat64 `json:"rounded_notional"`
}

type orderResponse struct {
	Instrument        string              `json:"instrument"`
	Side              string              `json:"side"`
	State             string              `json:"state"`
	LastTransactionAt string              `json:"last_transaction_at"`
	Executions        []executionResponse `json:"executions"`
}

type orderPageResponse struct {
	Next    string          `json:"next"`
	Results []orderResponse `json:"results"`
}

// GetAllStockOrders retrieves the full order history, following cursor
// pagination. The feed is reverse-chronological and is passed through
// unchanged — consumers reverse it before aggregation.
func (c *Client) GetAllStockOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order

	next := "/orders/"
	for page := 0; next != "" && page < c.maxOrderPages; page++ {
		var resp orderPageResponse
		if err := c.get(ctx, next, nil, &resp); err != nil {
			return nil, err
		}

		for _, o := range resp.Results {
			order := models.Order{
				InstrumentID:      o.Instrument,
				Side:              o.Side,
				State:             o.State,
				LastTransactionAt: o.LastTransactionAt,
				Fills:             make([]models.Fill, len(o.Executions)),
			}
			for i, e := range o.Executions {
				order.Fills[i] = models.Fill{
					Timestamp: e.Timestamp,
					Notional:  float64(e.RoundedNotional),
				}
			}
			orders = append(orders, order)
		}

		next = resp.Next
	}

	if next != "" {
		// Oldest orders beyond the cap are missing, which understates
		// per-symbol investment downstream
		c.logger.Warn().
			Int("pages", c.maxOrderPages).
			Int("orders", len(orders)).
			Msg("Order feed page cap reached, oldest orders not fetched")
	}

	c.logger.Debug().Int("orders", len(orders)).Msg("Fetched order history")
	return orders, nil
}

type instrumentResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	SimpleName string `json:"simple_name"`
	Name       string `json:"name"`
}

// GetInstrument resolves an opaque instrument identifier (a full instrument
// URL or a bare id) to its symbol and display name.
func (c *Client) GetInstrument(ctx context.Context, id string) (*models.Instrument, error) {
	reqURL := id
	if !strings.HasPrefix(id, "http") {
		reqURL = fmt.Sprintf("/instruments/%s/", id)
	}

	var resp instrumentResponse
	if err := c.get(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	name := resp.SimpleName
	if name == "" {
		name = resp.Name
	}

	return &models.Instrument{
		ID:     id,
		Symbol: resp.Symbol,
		Name:   name,
	}, nil
}

type positionResponse struct {
	Symbol          string      `json:"symbol"`
	Name            string      `json:"name"`
	Quantity        flexFloat64 `json:"quantity"`
	AverageBuyPrice flexFloat64 `json:"average_buy_price"`
	Price           flexFloat64 `json:"price"`
	Equity          flexFloat64 `json:"equity"`
}

type positionPageResponse struct {
	Results []positionResponse `json:"results"`
}

// GetPositions retrieves the live holdings snapshot (nonzero positions with
// current prices and equity).
func (c *Client) GetPositions(ctx context.Context) ([]models.AccountPosition, error) {
	params := url.Values{}
	params.Set("nonzero", "true")

	var resp positionPageResponse
	if err := c.get(ctx, "/positions/", params, &resp); err != nil {
		return nil, err
	}

	positions := make([]models.AccountPosition, len(resp.Results))
	for i, p := range resp.Results {
		positions[i] = models.AccountPosition{
			Symbol:       p.Symbol,
			Name:         p.Name,
			Quantity:     float64(p.Quantity),
			AvgCost:      float64(p.AverageBuyPrice),
			CurrentPrice: float64(p.Price),
			Equity:       float64(p.Equity),
		}
	}

	return positions, nil
}

// Ensure Client implements BrokerageClient
var _ interfaces.BrokerageClient = (*Client)(nil)
