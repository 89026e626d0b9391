// Package scan drives the fund scan pipeline: holdings → news → risk →
// report, with per-stage retry policy, and the batch runner that sequences
// scans across funds under a shared rate limit.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/models"
)

// Orchestrator implements ScanService. One orchestrator serves any number of
// concurrent scans: all per-scan state lives on the stack of Scan.
type Orchestrator struct {
	holdings interfaces.HoldingsClient
	news     interfaces.NewsClient
	report   interfaces.ReportClient
	engine   interfaces.RiskEngine
	cfg      common.ScanConfig
	logger   *common.Logger
}

// NewOrchestrator creates a scan orchestrator
func NewOrchestrator(
	holdings interfaces.HoldingsClient,
	news interfaces.NewsClient,
	report interfaces.ReportClient,
	engine interfaces.RiskEngine,
	cfg common.ScanConfig,
	logger *common.Logger,
) *Orchestrator {
	return &Orchestrator{
		holdings: holdings,
		news:     news,
		report:   report,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
	}
}

// scanState tracks one fund's progression through the pipeline.
type scanState struct {
	fundName  string
	stage     models.ScanStage
	portfolio *models.Portfolio
	alerts    []*models.NewsAlert
	risk      *models.RiskAnalysis

	// orchestration-level action items (degraded news, fallback report)
	extraActions []string
	degraded     bool
	startedAt    time.Time
}

// Scan runs the full pipeline for one fund. Terminal pipeline outcomes
// (success, partial, failed) are captured on the returned ScanResult; an error
// is returned only for invalid input that fails before any external call.
func (o *Orchestrator) Scan(ctx context.Context, fundName string) (*models.ScanResult, error) {
	if strings.TrimSpace(fundName) == "" {
		return nil, &models.ValidationError{Field: "fund_name", Message: "fund name cannot be empty"}
	}

	st := &scanState{fundName: fundName, stage: models.StageIdle, startedAt: time.Now()}
	o.logger.Info().Str("fund", fundName).Msg("Starting portfolio scan")

	// Stage 1: holdings. Provider errors here are never retried: stale or
	// guessed holdings data is worse than no scan.
	st.stage = models.StageFetchingHoldings
	portfolio, err := o.fetchHoldings(ctx, fundName)
	if err != nil {
		return o.fail(st, err), nil
	}
	st.portfolio = portfolio

	// Stage 2: news. Retried with bounded backoff; exhaustion degrades to an
	// empty alert set rather than failing. A scan with no news is still
	// useful, a scan with no holdings is not.
	st.stage = models.StageScanningNews
	alerts, newsErr := o.scanNews(ctx, portfolio)
	if newsErr != nil {
		if ctx.Err() != nil {
			return o.fail(st, newsErr), nil
		}
		o.logger.Warn().Str("fund", fundName).Err(newsErr).Msg("News scan exhausted retries, continuing without alerts")
		alerts = []*models.NewsAlert{}
		st.degraded = true
		st.extraActions = append(st.extraActions, "News scan was unavailable for this run; re-scan to refresh news coverage")
	}
	st.alerts = alerts

	// Stage 3: risk. Synchronous and fatal on error: a failure here means
	// malformed upstream data, which must never be silently swallowed.
	st.stage = models.StageAnalyzingRisk
	riskAnalysis, err := o.engine.Analyze(portfolio, alerts)
	if err != nil {
		return o.fail(st, &models.ComputationError{Message: "risk analysis failed", Err: err}), nil
	}
	st.risk = riskAnalysis

	// Stage 4: report. Retried once; continued failure substitutes a
	// templated fallback so the caller never gets an empty report.
	st.stage = models.StageGeneratingReport
	report, reportErr := o.generateReport(ctx, st)
	if reportErr != nil {
		if ctx.Err() != nil {
			return o.fail(st, reportErr), nil
		}
		o.logger.Warn().Str("fund", fundName).Err(reportErr).Msg("Report generation failed, using fallback summary")
		report = fallbackReport(st.fundName, riskAnalysis)
		st.degraded = true
		st.extraActions = append(st.extraActions, "Narrative report generation was unavailable; a templated summary was substituted")
	}

	st.stage = models.StageCompleted
	result := o.complete(st, report)

	o.logger.Info().
		Str("fund", fundName).
		Str("status", string(result.Status)).
		Int("risk_score", riskAnalysis.RiskScore).
		Int("alerts", len(alerts)).
		Msg("Portfolio scan completed")

	return result, nil
}

// Summarize returns the cheap read path: holdings and sector allocation only.
func (o *Orchestrator) Summarize(ctx context.Context, fundName string) (*models.PortfolioSummary, error) {
	if strings.TrimSpace(fundName) == "" {
		return nil, &models.ValidationError{Field: "fund_name", Message: "fund name cannot be empty"}
	}

	portfolio, err := o.fetchHoldings(ctx, fundName)
	if err != nil {
		return nil, err
	}

	return &models.PortfolioSummary{
		FundName:         portfolio.FundName,
		TotalValue:       portfolio.TotalValue,
		HoldingsCount:    len(portfolio.Holdings),
		SectorAllocation: portfolio.SectorAllocation,
		LastUpdated:      portfolio.LastUpdated,
	}, nil
}

// AssessRisk runs holdings, news, and risk stages without report generation.
func (o *Orchestrator) AssessRisk(ctx context.Context, fundName string) (*models.RiskAnalysis, error) {
	if strings.TrimSpace(fundName) == "" {
		return nil, &models.ValidationError{Field: "fund_name", Message: "fund name cannot be empty"}
	}

	portfolio, err := o.fetchHoldings(ctx, fundName)
	if err != nil {
		return nil, err
	}

	alerts, newsErr := o.scanNews(ctx, portfolio)
	if newsErr != nil {
		if ctx.Err() != nil {
			return nil, newsErr
		}
		o.logger.Warn().Str("fund", fundName).Err(newsErr).Msg("News scan exhausted retries, assessing risk without alerts")
		alerts = []*models.NewsAlert{}
	}

	riskAnalysis, err := o.engine.Analyze(portfolio, alerts)
	if err != nil {
		return nil, &models.ComputationError{Message: "risk analysis failed", Err: err}
	}
	return riskAnalysis, nil
}

// fetchHoldings retrieves and validates the portfolio snapshot.
func (o *Orchestrator) fetchHoldings(ctx context.Context, fundName string) (*models.Portfolio, error) {
	portfolio, err := o.holdings.GetPortfolioHoldings(ctx, fundName)
	if err != nil {
		return nil, err
	}
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// scanNews extracts the distinct ticker set and queries the news provider with
// bounded exponential backoff. An empty holdings list proceeds with an empty
// scan rather than failing.
func (o *Orchestrator) scanNews(ctx context.Context, portfolio *models.Portfolio) ([]*models.NewsAlert, error) {
	tickers := portfolio.Tickers()
	if len(tickers) == 0 {
		return []*models.NewsAlert{}, nil
	}

	maxAttempts := o.cfg.NewsMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = o.cfg.GetNewsBackoffBase()
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	var alerts []*models.NewsAlert
	operation := func() error {
		result, err := o.news.ScanMarketNews(ctx, tickers)
		if err != nil {
			var valErr *models.ValidationError
			if errors.As(err, &valErr) {
				return backoff.Permanent(err)
			}
			return err
		}
		alerts = result
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxAttempts-1)), ctx))
	if err != nil {
		return nil, err
	}

	// Drop malformed alerts rather than failing the scan; the provider
	// contract is advisory, the risk engine's is not.
	valid := make([]*models.NewsAlert, 0, len(alerts))
	for _, a := range alerts {
		if a == nil {
			continue
		}
		if err := a.Validate(); err != nil {
			o.logger.Debug().Str("ticker", a.Ticker).Err(err).Msg("Dropping malformed news alert")
			continue
		}
		valid = append(valid, a)
	}
	return valid, nil
}

// generateReport calls the report client with a per-attempt timeout and a
// bounded retry count.
func (o *Orchestrator) generateReport(ctx context.Context, st *scanState) (string, error) {
	attempts := 1 + o.cfg.ReportRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.GetReportTimeout())
		report, err := o.report.GenerateReport(attemptCtx, st.portfolio, st.alerts, st.risk)
		cancel()
		if err == nil && strings.TrimSpace(report) != "" {
			return report, nil
		}
		if err == nil {
			err = fmt.Errorf("report generator returned empty report")
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

// fail assembles the terminal result for a failed scan. The stage recorded is
// the one that was executing when the failure occurred.
func (o *Orchestrator) fail(st *scanState, err error) *models.ScanResult {
	o.logger.Error().
		Str("fund", st.fundName).
		Str("stage", string(st.stage)).
		Err(err).
		Msg("Portfolio scan failed")

	return &models.ScanResult{
		ID:          uuid.NewString(),
		FundName:    st.fundName,
		Status:      models.ScanStatusFailed,
		FailedStage: st.stage,
		Error:       err.Error(),
		Risk:        st.risk,
		ActionItems: []string{},
		StartedAt:   st.startedAt,
		CompletedAt: time.Now(),
	}
}

// complete assembles the terminal result for a finished scan. Results are
// never mutated after this point.
func (o *Orchestrator) complete(st *scanState, report string) *models.ScanResult {
	status := models.ScanStatusSuccess
	if st.degraded {
		status = models.ScanStatusPartial
	}

	actions := make([]string, 0, len(st.risk.ActionItems)+len(st.extraActions))
	actions = append(actions, st.risk.ActionItems...)
	actions = append(actions, st.extraActions...)

	return &models.ScanResult{
		ID:          uuid.NewString(),
		FundName:    st.fundName,
		Status:      status,
		Report:      report,
		ActionItems: actions,
		Risk:        st.risk,
		StartedAt:   st.startedAt,
		CompletedAt: time.Now(),
	}
}

// fallbackReport builds a deterministic summary from the risk analysis so a
// caller never receives an empty report.
func fallbackReport(fundName string, risk *models.RiskAnalysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Portfolio Scan Summary: %s\n\n", fundName))
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

	sb.WriteString("\nThis summary was generated from the risk analysis because the narrative report service was unavailable.\n")
	return sb.String()
}

// Ensure Orchestrator implements ScanService
var _ interfaces.ScanService = (*Orchestrator)(nil)
