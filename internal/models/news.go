// Package models defines data structures for Fundscan
package models

import (
	"fmt"
	"strings"
)

// AlertType categorizes a news alert.
type AlertType string

const (
	AlertTypeEarnings   AlertType = "earnings"
	AlertTypeRegulatory AlertType = "regulatory"
	AlertTypeMacro      AlertType = "macro"
	AlertTypeProduct    AlertType = "product"
	AlertTypeLegal      AlertType = "legal"
	AlertTypeMarket     AlertType = "market"
)

// Severity is an ordered alert severity.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank returns the severity ordering (low < medium < high).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	default:
		return -1
	}
}

// Sentiment classifies the tone of a news alert.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// RiskSign returns the direction the sentiment pushes risk: negative news
// increases risk (+1), positive news reduces it (−1), neutral contributes
// nothing.
func (s Sentiment) RiskSign() float64 {
	switch s {
	case SentimentNegative:
		return 1
	case SentimentPositive:
		return -1
	default:
		return 0
	}
}

// NewsAlert is one news event tied to a ticker. Alerts are a transient batch
// tied to a single scan and never persisted across scans.
type NewsAlert struct {
	Ticker      string    `json:"ticker"`
	AlertType   AlertType `json:"alert_type"`
	Severity    Severity  `json:"severity"`
	Headline    string    `json:"headline"`
	Sentiment   Sentiment `json:"sentiment"`
	ImpactScore float64   `json:"impact_score"` // [0,1], 0 = no effect
	Source      string    `json:"source"`
}

// Validate checks alert fields against the enumerations and impact bounds.
func (a *NewsAlert) Validate() error {
	if strings.TrimSpace(a.Ticker) == "" {
		return &ValidationError{Field: "ticker", Message: "alert ticker cannot be empty"}
	}
	if a.Severity.Rank() < 0 {
		return &ValidationError{Field: "severity", Message: fmt.Sprintf("unknown severity %q for %s", a.Severity, a.Ticker)}
	}
	switch a.Sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		return &ValidationError{Field: "sentiment", Message: fmt.Sprintf("unknown sentiment %q for %s", a.Sentiment, a.Ticker)}
	}
	if a.ImpactScore < 0 || a.ImpactScore > 1 {
		return &ValidationError{Field: "impact_score", Message: fmt.Sprintf("impact score %.4f for %s outside [0,1]", a.ImpactScore, a.Ticker)}
	}
	return nil
}
