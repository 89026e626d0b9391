// Package fixture provides deterministic in-process providers used by the
// selfcheck mode, demo runs, and tests. No network access, no randomness: the
// same fund name always produces the same portfolio and alerts.
package fixture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/models"
)

// snapshotTime is the fixed LastUpdated stamp on fixture portfolios.
var snapshotTime = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

// HoldingsProvider returns a canned five-position portfolio for any fund name.
type HoldingsProvider struct {
	Calls int
}

// GetPortfolioHoldings returns the demo portfolio for the named fund
func (p *HoldingsProvider) GetPortfolioHoldings(ctx context.Context, fundName string) (*models.Portfolio, error) {
	p.Calls++
	if strings.TrimSpace(fundName) == "" {
		return nil, &models.ValidationError{Field: "fund_name", Message: "fund name cannot be empty"}
	}

	const totalValue = 1000000.00
	holdings := []models.Holding{
		{Ticker: "AAPL", Name: "Apple Inc.", Weight: 0.28, Value: 0.28 * totalValue},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Weight: 0.24, Value: 0.24 * totalValue},
		{Ticker: "GOOGL", Name: "Alphabet Inc.", Weight: 0.19, Value: 0.19 * totalValue},
		{Ticker: "AMZN", Name: "Amazon.com Inc.", Weight: 0.17, Value: 0.17 * totalValue},
		{Ticker: "JPM", Name: "JPMorgan Chase & Co.", Weight: 0.12, Value: 0.12 * totalValue},
	}

	return &models.Portfolio{
		FundName:   fundName,
		TotalValue: totalValue,
		Holdings:   holdings,
		SectorAllocation: map[string]float64{
			"Technology":             0.52,
			"Financials":             0.18,
			"Consumer Discretionary": 0.12,
			"Healthcare":             0.10,
			"Industrials":            0.08,
		},
		LastUpdated: snapshotTime,
	}, nil
}

// NewsProvider returns canned per-ticker alerts.
type NewsProvider struct {
	Calls int
}

// ScanMarketNews returns the demo alerts for the given tickers
func (p *NewsProvider) ScanMarketNews(ctx context.Context, tickers []string) ([]*models.NewsAlert, error) {
	p.Calls++
	alerts := make([]*models.NewsAlert, 0, len(tickers)*2)
	for _, ticker := range tickers {
		alerts = append(alerts, alertsFor(ticker)...)
	}
	return alerts, nil
}

func alertsFor(ticker string) []*models.NewsAlert {
	switch ticker {
	case "AAPL":
		return []*models.NewsAlert{
			{Ticker: "AAPL", AlertType: models.AlertTypeEarnings, Severity: models.SeverityMedium, Headline: "Apple Inc. Reports Q4 Earnings Beat Expectations", Sentiment: models.SentimentPositive, ImpactScore: 0.75, Source: "Financial Times"},
			{Ticker: "AAPL", AlertType: models.AlertTypeProduct, Severity: models.SeverityHigh, Headline: "Apple Announces New iPhone Model with Advanced AI Features", Sentiment: models.SentimentPositive, ImpactScore: 0.85, Source: "TechCrunch"},
		}
	case "MSFT":
		return []*models.NewsAlert{
			{Ticker: "MSFT", AlertType: models.AlertTypeRegulatory, Severity: models.SeverityMedium, Headline: "Microsoft Faces EU Antitrust Investigation Over Cloud Practices", Sentiment: models.SentimentNegative, ImpactScore: 0.65, Source: "Reuters"},
			{Ticker: "MSFT", AlertType: models.AlertTypeMarket, Severity: models.SeverityMedium, Headline: "Microsoft Announces Strategic Partnership with OpenAI Competitor", Sentiment: models.SentimentPositive, ImpactScore: 0.60, Source: "Bloomberg"},
		}
	case "GOOGL":
		return []*models.NewsAlert{
			{Ticker: "GOOGL", AlertType: models.AlertTypeLegal, Severity: models.SeverityHigh, Headline: "Alphabet Faces Record $5 Billion Fine in EU Antitrust Case", Sentiment: models.SentimentNegative, ImpactScore: 0.80, Source: "Wall Street Journal"},
		}
	case "AMZN":
		return []*models.NewsAlert{
			{Ticker: "AMZN", AlertType: models.AlertTypeMarket, Severity: models.SeverityMedium, Headline: "Amazon Expands Grocery Store Chain to 50 New Locations", Sentiment: models.SentimentPositive, ImpactScore: 0.55, Source: "CNBC"},
		}
	case "JPM":
		return []*models.NewsAlert{
			{Ticker: "JPM", AlertType: models.AlertTypeEarnings, Severity: models.SeverityMedium, Headline: "JPMorgan Chase Reports Record Quarterly Profits", Sentiment: models.SentimentPositive, ImpactScore: 0.70, Source: "Financial Times"},
		}
	default:
		return []*models.NewsAlert{
			{Ticker: ticker, AlertType: models.AlertTypeMarket, Severity: models.SeverityLow, Headline: fmt.Sprintf("%s Shows Unusual Trading Volume Today", ticker), Sentiment: models.SentimentNeutral, ImpactScore: 0.10, Source: "MarketWatch"},
		}
	}
}

// ReportProvider renders a deterministic templated narrative, standing in for
// the LLM backend when running offline.
type ReportProvider struct {
	Calls int
}

// GenerateReport produces a templated narrative from the scan context
func (p *ReportProvider) GenerateReport(ctx context.Context, portfolio *models.Portfolio, alerts []*models.NewsAlert, risk *models.RiskAnalysis) (string, error) {
	p.Calls++

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Portfolio Scan Report: %s\n\n", portfolio.FundName))
	sb.WriteString(fmt.Sprintf("The fund holds %d positions with a total value of $%.2f. ", len(portfolio.Holdings), portfolio.TotalValue))
	sb.WriteString(fmt.Sprintf("The scan matched %d news alerts against current holdings.\n\n", len(alerts)))
	sb.WriteString(fmt.Sprintf("Overall risk level: %s (score %d/100).\n", strings.ToUpper(string(risk.OverallRiskLevel)), risk.RiskScore))

	if len(risk.KeyFindings) > 0 {
		sb.WriteString("\nKey findings:\n")
		for _, f := range risk.KeyFindings {
			sb.WriteString("- " + f + "\n")
		}
	}
	if len(risk.ActionItems) > 0 {
		sb.WriteString("\nRecommended actions:\n")
		for _, a := range risk.ActionItems {
			sb.WriteString("- " + a + "\n")
		}
	}

	return sb.String(), nil
}

// Interface assertions
var (
	_ interfaces.HoldingsClient = (*HoldingsProvider)(nil)
	_ interfaces.NewsClient     = (*NewsProvider)(nil)
	_ interfaces.ReportClient   = (*ReportProvider)(nil)
)
