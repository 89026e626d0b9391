// Package models defines data structures for Fundscan
package models

// RiskLevel is the ordinal risk classification derived from the risk score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Exposure metric names. Every RiskAnalysis carries at least these three.
const (
	MetricSectorConcentration = "sector_concentration_risk"
	MetricNewsSentimentImpact = "news_sentiment_impact"
	MetricLiquidityRisk       = "liquidity_risk"
)

// RiskAnalysis is the output of the risk engine. Computed fresh each scan and
// never mutated after creation.
type RiskAnalysis struct {
	OverallRiskLevel RiskLevel          `json:"overall_risk_level"`
	RiskScore        int                `json:"risk_score"` // 0–100
	KeyFindings      []string           `json:"key_findings"`
	ActionItems      []string           `json:"action_items"`
	ExposureMetrics  map[string]float64 `json:"exposure_metrics"` // metric name → [0,1]
}
