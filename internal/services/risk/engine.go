// Package risk implements the portfolio risk engine: a pure, deterministic
// mapping from (portfolio, alerts) to an exposure profile. No I/O, no clocks,
// no external calls.
package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/models"
)

// Liquidity formula constants. Liquidity risk rises as the position count
// drops below diversifiedHoldings and as the largest position grows:
//
//	liquidity = 0.6 × max(0, (diversifiedHoldings−n)/diversifiedHoldings) + 0.4 × maxHoldingWeight
//
// clamped to [0,1]. A portfolio with no holdings has no liquidity exposure.
const (
	diversifiedHoldings  = 10
	liquidityCountWeight = 0.6
	liquiditySizeWeight  = 0.4
)

// Engine implements the RiskEngine interface. Metric weights and score
// thresholds are policy, injected from configuration at construction.
type Engine struct {
	cfg common.RiskConfig
}

// NewEngine creates a risk engine with the given scoring policy
func NewEngine(cfg common.RiskConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze computes the exposure profile for a portfolio and its news alerts.
// Malformed input fails fast with a validation error; a well-formed empty
// portfolio yields the zero-exposure baseline (score 0, level low).
func (e *Engine) Analyze(portfolio *models.Portfolio, alerts []*models.NewsAlert) (*models.RiskAnalysis, error) {
	if portfolio == nil {
		return nil, &models.ValidationError{Field: "portfolio", Message: "portfolio is required"}
	}
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}
	for _, a := range alerts {
		if a == nil {
			return nil, &models.ValidationError{Field: "alerts", Message: "alert entries cannot be nil"}
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}

	sector, topSector := sectorConcentration(portfolio)
	news := newsSentimentImpact(portfolio, alerts)
	liquidity := liquidityRisk(portfolio)

	score := combineScore(e.cfg, sector, news, liquidity)
	level := e.levelFor(score)

	metrics := map[string]float64{
		models.MetricSectorConcentration: sector,
		models.MetricNewsSentimentImpact: news,
		models.MetricLiquidityRisk:       liquidity,
	}

	findings, actions := buildFindings(ruleInput{
		portfolio: portfolio,
		alerts:    alerts,
		metrics:   metrics,
		topSector: topSector,
		score:     score,
		level:     level,
		cfg:       e.cfg,
	})

	return &models.RiskAnalysis{
		OverallRiskLevel: level,
		RiskScore:        score,
		KeyFindings:      findings,
		ActionItems:      actions,
		ExposureMetrics:  metrics,
	}, nil
}

// sectorConcentration returns the largest single-sector fraction and the
// sector carrying it. Ties break to the lexicographically first sector so the
// result is deterministic regardless of map order.
func sectorConcentration(p *models.Portfolio) (float64, string) {
	if len(p.SectorAllocation) == 0 {
		return 0, ""
	}

	sectors := make([]string, 0, len(p.SectorAllocation))
	for name := range p.SectorAllocation {
		sectors = append(sectors, name)
	}
	sort.Strings(sectors)

	top, maxFrac := "", 0.0
	for _, name := range sectors {
		if frac := p.SectorAllocation[name]; frac > maxFrac {
			top, maxFrac = name, frac
		}
	}
	return clamp01(maxFrac), top
}

// newsSentimentImpact computes the signed, weight-adjusted impact of news on
// the portfolio: per held ticker, signed impacts are summed (not averaged),
// multiplied by the holding's weight, and the total is clamped to [0,1].
// Negative sentiment pushes risk up, positive pulls it down, and alerts for
// tickers not held contribute nothing.
func newsSentimentImpact(p *models.Portfolio, alerts []*models.NewsAlert) float64 {
	if len(alerts) == 0 || len(p.Holdings) == 0 {
		return 0
	}

	signedByTicker := make(map[string]float64)
	for _, a := range alerts {
		if !p.Holds(a.Ticker) {
			continue
		}
		signedByTicker[a.Ticker] += a.Sentiment.RiskSign() * a.ImpactScore
	}

	total := 0.0
	for _, h := range p.Holdings {
		if signed, ok := signedByTicker[h.Ticker]; ok {
			total += h.Weight * signed
		}
	}

	return clamp01(total)
}

// liquidityRisk applies the documented count/size formula. Fewer, larger
// positions score higher.
func liquidityRisk(p *models.Portfolio) float64 {
	n := len(p.Holdings)
	if n == 0 {
		return 0
	}

	countTerm := math.Max(0, float64(diversifiedHoldings-n)/float64(diversifiedHoldings))

	weights := make([]float64, n)
	for i, h := range p.Holdings {
		weights[i] = h.Weight
	}
	sizeTerm := floats.Max(weights)

	return clamp01(liquidityCountWeight*countTerm + liquiditySizeWeight*sizeTerm)
}

// combineScore folds the three exposure metrics into the 0–100 risk score
// using the configured weights.
func combineScore(cfg common.RiskConfig, sector, news, liquidity float64) int {
	raw := cfg.SectorWeight*sector + cfg.NewsWeight*news + cfg.LiquidityWeight*liquidity
	score := int(math.Round(raw * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// levelFor maps a score onto the configured threshold table.
func (e *Engine) levelFor(score int) models.RiskLevel {
	switch {
	case score < e.cfg.LowMax:
		return models.RiskLevelLow
	case score < e.cfg.MediumMax:
		return models.RiskLevelMedium
	case score < e.cfg.HighMax:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelCritical
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Ensure Engine implements RiskEngine
var _ interfaces.RiskEngine = (*Engine)(nil)
