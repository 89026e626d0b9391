// Package interfaces defines service contracts for Fundscan
package interfaces

import (
	"context"

	"github.com/bobmcallan/fundscan/internal/models"
)

// HoldingsClient provides access to the holdings provider
type HoldingsClient interface {
	// GetPortfolioHoldings retrieves the current portfolio snapshot for a fund
	GetPortfolioHoldings(ctx context.Context, fundName string) (*models.Portfolio, error)
}

// NewsClient provides access to the market news provider
type NewsClient interface {
	// ScanMarketNews retrieves news alerts for a set of tickers. An empty
	// ticker set returns an empty list, not an error.
	ScanMarketNews(ctx context.Context, tickers []string) ([]*models.NewsAlert, error)
}

// ReportClient generates narrative reports from scan context. Treated as a
// long-latency, fallible black box.
type ReportClient interface {
	// GenerateReport produces a free-text narrative for the scanned fund
	GenerateReport(ctx context.Context, portfolio *models.Portfolio, alerts []*models.NewsAlert, risk *models.RiskAnalysis) (string, error)
}
