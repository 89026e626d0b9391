// Package interfaces defines service contracts for Fundscan
package interfaces

import (
	"context"

	"github.com/bobmcallan/fundscan/internal/models"
)

// RiskEngine maps a portfolio and its news alerts to a risk analysis. Pure and
// deterministic: no I/O, no external calls, no hidden time dependence.
type RiskEngine interface {
	// Analyze computes the exposure profile for well-formed input. Malformed
	// input fails fast with a validation error, never a partial analysis.
	Analyze(portfolio *models.Portfolio, alerts []*models.NewsAlert) (*models.RiskAnalysis, error)
}

// ScanService drives the scan pipeline for a single fund
type ScanService interface {
	// Scan runs the full pipeline: holdings → news → risk → report
	Scan(ctx context.Context, fundName string) (*models.ScanResult, error)

	// Summarize returns holdings and sector allocation only, skipping the
	// news, risk, and report stages
	Summarize(ctx context.Context, fundName string) (*models.PortfolioSummary, error)

	// AssessRisk runs holdings, news, and risk stages, skipping report
	// generation
	AssessRisk(ctx context.Context, fundName string) (*models.RiskAnalysis, error)
}

// BatchService sequences scans over multiple funds under a rate limit
type BatchService interface {
	// RunBatch scans each fund and returns one result per input fund in input
	// order. A single fund's failure does not abort the batch.
	RunBatch(ctx context.Context, fundNames []string) ([]*models.ScanResult, error)
}
