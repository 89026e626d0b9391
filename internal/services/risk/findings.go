package risk

import (
	"fmt"

	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/models"
)

// Rule thresholds for findings and action items. A metric crossing its
// threshold triggers the corresponding template.
const (
	sectorFindingThreshold    = 0.40
	newsFindingThreshold      = 0.30
	liquidityFindingThreshold = 0.50
	negativeAlertActionCount  = 3 // this many negative alerts triggers a review action
)

type ruleInput struct {
	portfolio *models.Portfolio
	alerts    []*models.NewsAlert
	metrics   map[string]float64
	topSector string
	score     int
	level     models.RiskLevel
	cfg       common.RiskConfig
}

// buildFindings generates the key findings and action items from rule
// templates. Every rule is deterministic so two analyses of the same input
// produce identical output, in identical order.
func buildFindings(in ruleInput) (findings []string, actions []string) {
	findings = []string{}
	actions = []string{}

	sector := in.metrics[models.MetricSectorConcentration]
	news := in.metrics[models.MetricNewsSentimentImpact]
	liquidity := in.metrics[models.MetricLiquidityRisk]

	if len(in.portfolio.Holdings) == 0 {
		findings = append(findings, "Portfolio has no holdings; no meaningful market exposure")
		return findings, actions
	}

	// Sector concentration
	if sector >= sectorFindingThreshold {
		findings = append(findings, fmt.Sprintf("Sector concentration is elevated: %.0f%% of the portfolio sits in %s", sector*100, in.topSector))
		actions = append(actions, fmt.Sprintf("Consider diversifying away from %s to reduce sector concentration risk", in.topSector))
	} else if sector > 0 {
		findings = append(findings, fmt.Sprintf("Sector allocation is balanced, largest sector %s at %.0f%%", in.topSector, sector*100))
	}

	// News sentiment
	negative, positive := 0, 0
	for _, a := range in.alerts {
		if !in.portfolio.Holds(a.Ticker) {
			continue
		}
		switch a.Sentiment {
		case models.SentimentNegative:
			negative++
		case models.SentimentPositive:
			positive++
		}
	}

	if news >= newsFindingThreshold {
		findings = append(findings, fmt.Sprintf("Negative news sentiment is materially impacting held positions (%d negative vs %d positive alerts)", negative, positive))
	} else if negative > positive {
		findings = append(findings, "Negative news sentiment outweighs positive sentiment for portfolio holdings")
	} else if positive > negative {
		findings = append(findings, "Positive news sentiment outweighs negative sentiment for portfolio holdings")
	} else if len(in.alerts) > 0 {
		findings = append(findings, "News sentiment is balanced across portfolio holdings")
	}

	if negative >= negativeAlertActionCount {
		actions = append(actions, "Review holdings with negative news sentiment and consider rebalancing")
	}

	// Liquidity
	if liquidity >= liquidityFindingThreshold {
		findings = append(findings, fmt.Sprintf("Liquidity risk is elevated: %d positions with the largest at %.0f%% of the portfolio", len(in.portfolio.Holdings), maxWeight(in.portfolio)*100))
		actions = append(actions, "Increase position count or trim the largest holdings to improve liquidity")
	}

	// Overall level
	switch in.level {
	case models.RiskLevelCritical, models.RiskLevelHigh:
		findings = append(findings, fmt.Sprintf("High risk exposure detected (score %d/100); immediate attention recommended", in.score))
		actions = append(actions, "Implement risk mitigation strategies for high-risk holdings")
	case models.RiskLevelMedium:
		findings = append(findings, fmt.Sprintf("Moderate risk exposure detected (score %d/100); monitoring recommended", in.score))
	default:
		findings = append(findings, fmt.Sprintf("Low risk exposure detected (score %d/100); portfolio appears well-balanced", in.score))
		actions = append(actions, "Current risk level is low; consider opportunities for strategic growth")
	}

	return findings, actions
}

func maxWeight(p *models.Portfolio) float64 {
	max := 0.0
	for _, h := range p.Holdings {
		if h.Weight > max {
			max = h.Weight
		}
	}
	return max
}
