// Package app wires configuration, clients, and services into a running
// Fundscan instance. It is the shared core used by cmd/fundscan.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/fundscan/internal/clients/eodhd"
	"github.com/bobmcallan/fundscan/internal/clients/fixture"
	"github.com/bobmcallan/fundscan/internal/clients/gemini"
	"github.com/bobmcallan/fundscan/internal/clients/navexa"
	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/services/risk"
	"github.com/bobmcallan/fundscan/internal/services/scan"
)

// App holds all initialized clients and services.
type App struct {
	Config *common.Config
	Logger *common.Logger

	HoldingsClient interfaces.HoldingsClient
	NewsClient     interfaces.NewsClient
	ReportClient   interfaces.ReportClient

	RiskEngine  interfaces.RiskEngine
	ScanService interfaces.ScanService
	Batch       interfaces.BatchService
}

// Options controls app construction.
type Options struct {
	ConfigPath string
	// UseFixtures swaps all external providers for the deterministic
	// in-process fixtures (selfcheck and demo mode).
	UseFixtures bool
}

// NewApp initializes configuration, logging, clients, and services.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = os.Getenv("FUNDSCAN_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binaryDir(), "fundscan.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fundscan.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	a := &App{
		Config: config,
		Logger: logger,
	}

	if opts.UseFixtures {
		a.HoldingsClient = &fixture.HoldingsProvider{}
		a.NewsClient = &fixture.NewsProvider{}
		a.ReportClient = &fixture.ReportProvider{}
	} else {
		if err := a.buildClients(ctx); err != nil {
			return nil, err
		}
	}

	a.RiskEngine = risk.NewEngine(config.Risk)
	a.ScanService = scan.NewOrchestrator(
		a.HoldingsClient,
		a.NewsClient,
		a.ReportClient,
		a.RiskEngine,
		config.Scan,
		logger,
	)
	a.Batch = scan.NewBatchRunner(a.ScanService, config.Batch, logger)

	logger.Debug().
		Str("environment", config.Environment).
		Bool("fixtures", opts.UseFixtures).
		Msg("App initialized")

	return a, nil
}

// buildClients constructs the real provider clients from configuration.
func (a *App) buildClients(ctx context.Context) error {
	cfg := a.Config.Clients

	if cfg.Navexa.APIKey == "" {
		return fmt.Errorf("navexa API key not configured (set NAVEXA_API_KEY or clients.navexa.api_key)")
	}
	a.HoldingsClient = navexa.NewClient(cfg.Navexa.APIKey,
		navexa.WithBaseURL(cfg.Navexa.BaseURL),
		navexa.WithRateLimit(cfg.Navexa.RateLimit),
		navexa.WithTimeout(cfg.Navexa.GetTimeout()),
		navexa.WithLogger(a.Logger),
	)

	if cfg.EODHD.APIKey == "" {
		return fmt.Errorf("eodhd API key not configured (set EODHD_API_KEY or clients.eodhd.api_key)")
	}
	a.NewsClient = eodhd.NewClient(cfg.EODHD.APIKey,
		eodhd.WithBaseURL(cfg.EODHD.BaseURL),
		eodhd.WithRateLimit(cfg.EODHD.RateLimit),
		eodhd.WithTimeout(cfg.EODHD.GetTimeout()),
		eodhd.WithLogger(a.Logger),
	)

	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key not configured (set GEMINI_API_KEY or clients.gemini.api_key)")
	}
	reportClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey,
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithLogger(a.Logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create report client: %w", err)
	}
	a.ReportClient = reportClient

	return nil
}

// binaryDir returns the directory containing the executable.
func binaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
