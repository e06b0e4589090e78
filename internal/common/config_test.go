package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "^GSPC", cfg.Benchmark.Symbol)
	assert.Equal(t, 10, cfg.Resolver.Workers)
	assert.Equal(t, 50, cfg.Clients.Brokerage.MaxOrderPages)
}

func TestLoadConfig_MissingFilesSkipped(t *testing.T) {
	cfg, err := LoadConfig("does-not-exist.toml")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
port = 9090

[benchmark]
symbol = "^NDX"
name = "Nasdaq 100"

[resolver]
workers = 4
fetch_timeout = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "^NDX", cfg.Benchmark.Symbol)
	assert.Equal(t, 4, cfg.Resolver.Workers)
	assert.Equal(t, "5s", cfg.Resolver.FetchTimeout)
	// Untouched sections keep defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_PORT", "7070")
	t.Setenv("FOLIO_BENCHMARK_SYMBOL", "^DJI")
	t.Setenv("FOLIO_BROKERAGE_TOKEN", "test-token")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "^DJI", cfg.Benchmark.Symbol)
	assert.Equal(t, "test-token", cfg.Clients.Brokerage.Token)
}

func TestResolverConfig_FetchTimeoutFallback(t *testing.T) {
	c := ResolverConfig{FetchTimeout: "garbage"}
	assert.Equal(t, "15s", c.GetFetchTimeout().String())
}
