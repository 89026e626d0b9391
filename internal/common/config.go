// Package common provides shared utilities for Fundscan
package common

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fundscan
type Config struct {
	Environment string        `toml:"environment"`
	Funds       []string      `toml:"funds"` // default funds for batch mode
	Clients     ClientsConfig `toml:"clients"`
	Scan        ScanConfig    `toml:"scan"`
	Batch       BatchConfig   `toml:"batch"`
	Risk        RiskConfig    `toml:"risk"`
	Logging     LoggingConfig `toml:"logging"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Navexa NavexaConfig `toml:"navexa"`
	EODHD  EODHDConfig  `toml:"eodhd"`
	Gemini GeminiConfig `toml:"gemini"`
}

// NavexaConfig holds holdings provider API configuration
type NavexaConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *NavexaConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EODHDConfig holds news provider API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds report generator API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ScanConfig holds per-stage retry and timeout policy for the scan pipeline.
// News provider errors are retried; holdings errors never are.
type ScanConfig struct {
	NewsMaxAttempts int    `toml:"news_max_attempts"` // total attempts, not retries
	NewsBackoffBase string `toml:"news_backoff_base"` // initial delay, doubles per attempt
	ReportRetries   int    `toml:"report_retries"`    // retries after the first attempt
	ReportTimeout   string `toml:"report_timeout"`
}

// GetNewsBackoffBase parses the base backoff delay for the news stage
func (c *ScanConfig) GetNewsBackoffBase() time.Duration {
	d, err := time.ParseDuration(c.NewsBackoffBase)
	if err != nil {
		return 1 * time.Second
	}
	return d
}

// GetReportTimeout parses the per-attempt report generation timeout
func (c *ScanConfig) GetReportTimeout() time.Duration {
	d, err := time.ParseDuration(c.ReportTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// BatchConfig holds batch runner throttling configuration
type BatchConfig struct {
	MaxConcurrent int     `toml:"max_concurrent"` // 1 = sequential
	MinDelay      string  `toml:"min_delay"`      // minimum delay between scan starts
	RatePerSec    float64 `toml:"rate_per_sec"`   // shared token-bucket refill rate
}

// GetMinDelay parses the minimum inter-scan delay
func (c *BatchConfig) GetMinDelay() time.Duration {
	d, err := time.ParseDuration(c.MinDelay)
	if err != nil {
		return 0
	}
	return d
}

// RiskConfig holds the tunable policy of the risk engine: metric weights for the
// combined score and the score thresholds mapping to risk levels. Weights encode
// policy, not mechanism, so they live here rather than in the engine.
type RiskConfig struct {
	SectorWeight    float64 `toml:"sector_weight"`
	NewsWeight      float64 `toml:"news_weight"`
	LiquidityWeight float64 `toml:"liquidity_weight"`

	// Score thresholds: score < LowMax → low, < MediumMax → medium,
	// < HighMax → high, else critical.
	LowMax    int `toml:"low_max"`
	MediumMax int `toml:"medium_max"`
	HighMax   int `toml:"high_max"`
}

// Validate checks that weights form a sensible combination and thresholds are
// strictly increasing within 0–100.
func (c *RiskConfig) Validate() error {
	sum := c.SectorWeight + c.NewsWeight + c.LiquidityWeight
	if c.SectorWeight < 0 || c.NewsWeight < 0 || c.LiquidityWeight < 0 || math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("risk weights must be non-negative and sum to 1.0, got %.3f", sum)
	}
	if c.LowMax <= 0 || c.LowMax >= c.MediumMax || c.MediumMax >= c.HighMax || c.HighMax > 100 {
		return fmt.Errorf("risk thresholds must satisfy 0 < low < medium < high <= 100")
	}
	return nil
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Clients: ClientsConfig{
			Navexa: NavexaConfig{
				BaseURL:   "https://api.navexa.com.au",
				RateLimit: 5,
				Timeout:   "30s",
			},
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Scan: ScanConfig{
			NewsMaxAttempts: 3,
			NewsBackoffBase: "1s",
			ReportRetries:   1,
			ReportTimeout:   "60s",
		},
		Batch: BatchConfig{
			MaxConcurrent: 1,
			MinDelay:      "500ms",
			RatePerSec:    2,
		},
		Risk: RiskConfig{
			SectorWeight:    0.50,
			NewsWeight:      0.30,
			LiquidityWeight: 0.20,
			LowMax:          25,
			MediumMax:       50,
			HighMax:         75,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	// Pick up a local .env before reading the environment
	_ = godotenv.Load()

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

	if err := config.Risk.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDSCAN_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("FUNDSCAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("FUNDSCAN_NEWS_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Scan.NewsMaxAttempts = n
		}
	}

	if v := os.Getenv("FUNDSCAN_BATCH_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Batch.MaxConcurrent = n
		}
	}

	config.Clients.Navexa.APIKey = ResolveAPIKey("navexa_api_key", config.Clients.Navexa.APIKey)
	config.Clients.EODHD.APIKey = ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	config.Clients.Gemini.APIKey = ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
}

// ResolveAPIKey resolves an API key from the environment, falling back to the
// configured value when no environment variable is set.
func ResolveAPIKey(name string, fallback string) string {
	keyToEnvMapping := map[string][]string{
		"navexa_api_key": {"NAVEXA_API_KEY", "FUNDSCAN_NAVEXA_API_KEY"},
		"eodhd_api_key":  {"EODHD_API_KEY", "FUNDSCAN_EODHD_API_KEY"},
		"gemini_api_key": {"GEMINI_API_KEY", "FUNDSCAN_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue
			}
		}
	}

	return fallback
}
