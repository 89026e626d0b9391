package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 3, cfg.Scan.NewsMaxAttempts)
	assert.Equal(t, time.Second, cfg.Scan.GetNewsBackoffBase())
	assert.Equal(t, 1, cfg.Scan.ReportRetries)
	assert.Equal(t, 60*time.Second, cfg.Scan.GetReportTimeout())
	assert.Equal(t, 1, cfg.Batch.MaxConcurrent)
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.GetMinDelay())
	assert.Equal(t, 2.0, cfg.Batch.RatePerSec)

	require.NoError(t, cfg.Risk.Validate())
	assert.Equal(t, 0.50, cfg.Risk.SectorWeight)
	assert.Equal(t, 0.30, cfg.Risk.NewsWeight)
	assert.Equal(t, 0.20, cfg.Risk.LiquidityWeight)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fundscan.toml")
	content := `
environment = "production"
funds = ["Tech Growth Fund", "Balanced Income Fund"]

[scan]
news_max_attempts = 5
news_backoff_base = "250ms"

[batch]
max_concurrent = 4

[risk]
sector_weight = 0.4
news_weight = 0.4
liquidity_weight = 0.2
low_max = 20
medium_max = 40
high_max = 70
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, []string{"Tech Growth Fund", "Balanced Income Fund"}, cfg.Funds)
	assert.Equal(t, 5, cfg.Scan.NewsMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.GetNewsBackoffBase())
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
	assert.Equal(t, 0.4, cfg.Risk.SectorWeight)
	assert.Equal(t, 20, cfg.Risk.LowMax)

	// Values the file does not mention keep their defaults.
	assert.Equal(t, 1, cfg.Scan.ReportRetries)
	assert.Equal(t, "https://eodhd.com/api", cfg.Clients.EODHD.BaseURL)
}

func TestLoadConfig_MissingFileIsSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadConfig_InvalidRiskConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fundscan.toml")
	content := `
[risk]
sector_weight = 0.9
news_weight = 0.9
liquidity_weight = 0.2
low_max = 25
medium_max = 50
high_max = 75
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FUNDSCAN_ENV", "staging")
	t.Setenv("FUNDSCAN_LOG_LEVEL", "debug")
	t.Setenv("FUNDSCAN_NEWS_MAX_ATTEMPTS", "7")
	t.Setenv("FUNDSCAN_BATCH_MAX_CONCURRENT", "3")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Scan.NewsMaxAttempts)
	assert.Equal(t, 3, cfg.Batch.MaxConcurrent)
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "")
	t.Setenv("FUNDSCAN_EODHD_API_KEY", "")
	assert.Equal(t, "fallback", ResolveAPIKey("eodhd_api_key", "fallback"))

	t.Setenv("EODHD_API_KEY", "from-env")
	assert.Equal(t, "from-env", ResolveAPIKey("eodhd_api_key", "fallback"))

	// Unknown key names pass the fallback through.
	assert.Equal(t, "fallback", ResolveAPIKey("unknown_key", "fallback"))
}

func TestRiskConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *RiskConfig)
		ok     bool
	}{
		{"defaults", func(c *RiskConfig) {}, true},
		{"weights sum above one", func(c *RiskConfig) { c.SectorWeight = 0.9 }, false},
		{"negative weight", func(c *RiskConfig) { c.SectorWeight = -0.1; c.NewsWeight = 0.9 }, false},
		{"thresholds not increasing", func(c *RiskConfig) { c.MediumMax = 20 }, false},
		{"threshold above 100", func(c *RiskConfig) { c.HighMax = 120 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Risk
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
