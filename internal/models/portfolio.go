// Package models defines data structures for Fundscan
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Tolerances for portfolio invariant checks.
const (
	// WeightSumTolerance is the allowed deviation of summed fractions from 1.0.
	WeightSumTolerance = 0.01
	// ValueTolerancePct is the allowed relative deviation of a holding's value
	// from weight × total_value.
	ValueTolerancePct = 0.01
)

// Holding represents one position within a portfolio.
type Holding struct {
	Ticker string  `json:"ticker"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"` // fraction of portfolio value in [0,1]
	Value  float64 `json:"value"`  // currency amount, non-negative
}

// Validate checks a single holding's fields.
func (h *Holding) Validate() error {
	if strings.TrimSpace(h.Ticker) == "" {
		return &ValidationError{Field: "ticker", Message: "ticker cannot be empty"}
	}
	if h.Weight < 0 || h.Weight > 1 {
		return &ValidationError{Field: "weight", Message: fmt.Sprintf("weight %.4f for %s outside [0,1]", h.Weight, h.Ticker)}
	}
	if h.Value < 0 {
		return &ValidationError{Field: "value", Message: fmt.Sprintf("value %.2f for %s is negative", h.Value, h.Ticker)}
	}
	return nil
}

// Portfolio represents a fund's holdings snapshot. Immutable once retrieved;
// a new scan always re-fetches.
type Portfolio struct {
	FundName         string             `json:"fund_name"`
	TotalValue       float64            `json:"total_value"`
	Holdings         []Holding          `json:"holdings"`
	SectorAllocation map[string]float64 `json:"sector_allocation"` // sector name → fraction
	LastUpdated      time.Time          `json:"last_updated"`
}

// Tickers returns the distinct set of tickers held, preserving first-seen order.
func (p *Portfolio) Tickers() []string {
	seen := make(map[string]bool, len(p.Holdings))
	tickers := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		if h.Ticker == "" || seen[h.Ticker] {
			continue
		}
		seen[h.Ticker] = true
		tickers = append(tickers, h.Ticker)
	}
	return tickers
}

// Holds reports whether the portfolio contains the given ticker.
func (p *Portfolio) Holds(ticker string) bool {
	for _, h := range p.Holdings {
		if h.Ticker == ticker {
			return true
		}
	}
	return false
}

// Validate checks portfolio invariants: non-empty fund name, non-negative total,
// unique tickers, weight sum ≈ 1, value ≈ weight × total_value, and sector
// fractions summing ≈ 1. An empty holdings list is valid (weight checks are
// skipped for it).
func (p *Portfolio) Validate() error {
	if strings.TrimSpace(p.FundName) == "" {
		return &ValidationError{Field: "fund_name", Message: "fund name cannot be empty"}
	}
	if p.TotalValue < 0 {
		return &ValidationError{Field: "total_value", Message: fmt.Sprintf("total value %.2f is negative", p.TotalValue)}
	}

	seen := make(map[string]bool, len(p.Holdings))
	weightSum := 0.0
	for i := range p.Holdings {
		h := &p.Holdings[i]
		if err := h.Validate(); err != nil {
			return err
		}
		if seen[h.Ticker] {
			return &ValidationError{Field: "ticker", Message: fmt.Sprintf("duplicate ticker %s", h.Ticker)}
		}
		seen[h.Ticker] = true
		weightSum += h.Weight

		if p.TotalValue > 0 {
			expected := h.Weight * p.TotalValue
			if expected > 0 && math.Abs(h.Value-expected)/expected > ValueTolerancePct {
				return &ValidationError{
					Field:   "value",
					Message: fmt.Sprintf("value %.2f for %s deviates from weight×total %.2f by more than %.0f%%", h.Value, h.Ticker, expected, ValueTolerancePct*100),
				}
			}
		}
	}

	if len(p.Holdings) > 0 && math.Abs(weightSum-1.0) > WeightSumTolerance {
		return &ValidationError{Field: "holdings", Message: fmt.Sprintf("holding weights sum to %.4f, expected 1.0", weightSum)}
	}

	if len(p.SectorAllocation) > 0 {
		sectorSum := 0.0
		for sector, frac := range p.SectorAllocation {
			if frac < 0 || frac > 1 {
				return &ValidationError{Field: "sector_allocation", Message: fmt.Sprintf("sector %s fraction %.4f outside [0,1]", sector, frac)}
			}
			sectorSum += frac
		}
		if math.Abs(sectorSum-1.0) > WeightSumTolerance {
			return &ValidationError{Field: "sector_allocation", Message: fmt.Sprintf("sector fractions sum to %.4f, expected 1.0", sectorSum)}
		}
	}

	return nil
}

// PortfolioSummary is the cheap read path: holdings overview and sector
// allocation without news, risk, or report stages.
type PortfolioSummary struct {
	FundName         string             `json:"fund_name"`
	TotalValue       float64            `json:"total_value"`
	HoldingsCount    int                `json:"holdings_count"`
	SectorAllocation map[string]float64 `json:"sector_allocation"`
	LastUpdated      time.Time          `json:"last_updated"`
}
