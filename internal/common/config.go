// Package common provides shared utilities for FolioView
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for FolioView
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Benchmark   BenchmarkConfig `toml:"benchmark"`
	Resolver    ResolverConfig  `toml:"resolver"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Brokerage  BrokerageConfig  `toml:"brokerage"`
	MarketData MarketDataConfig `toml:"marketdata"`
}

// BrokerageConfig holds brokerage API configuration. The access token is the
// only credential material; it is never persisted by this process.
type BrokerageConfig struct {
	BaseURL       string `toml:"base_url"`
	Token         string `toml:"token"`
	RateLimit     int    `toml:"rate_limit"`
	Timeout       string `toml:"timeout"`
	MaxOrderPages int    `toml:"max_order_pages"` // order-feed pagination cap
}

// GetTimeout parses and returns the timeout duration
func (c *BrokerageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MarketDataConfig holds market-data API configuration
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketDataConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// BenchmarkConfig names the reference index used for the SIP comparison and
// the historical curve.
type BenchmarkConfig struct {
	Symbol string `toml:"symbol"`
	Name   string `toml:"name"`
}

// ResolverConfig tunes the instrument resolution cache.
type ResolverConfig struct {
	Workers      int    `toml:"workers"`
	FetchTimeout string `toml:"fetch_timeout"` // per-lookup deadline
}

// GetFetchTimeout parses and returns the per-fetch timeout duration
func (c *ResolverConfig) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Clients: ClientsConfig{
			Brokerage: BrokerageConfig{
				BaseURL:       "https://api.robinhood.com",
				RateLimit:     5,
				Timeout:       "30s",
				MaxOrderPages: 50,
			},
			MarketData: MarketDataConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Benchmark: BenchmarkConfig{
			Symbol: "^GSPC",
			Name:   "S&P 500 Index",
		},
		Resolver: ResolverConfig{
			Workers:      10,
			FetchTimeout: "15s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if token := os.Getenv("FOLIO_BROKERAGE_TOKEN"); token != "" {
		config.Clients.Brokerage.Token = token
	}

	if url := os.Getenv("FOLIO_BROKERAGE_URL"); url != "" {
		config.Clients.Brokerage.BaseURL = url
	}

	if url := os.Getenv("FOLIO_MARKETDATA_URL"); url != "" {
		config.Clients.MarketData.BaseURL = url
	}

	if sym := os.Getenv("FOLIO_BENCHMARK_SYMBOL"); sym != "" {
		config.Benchmark.Symbol = sym
	}
}
