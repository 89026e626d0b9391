// Package models defines data structures for Fundscan
package models

import "time"

// ScanStatus is the terminal outcome of a fund scan.
type ScanStatus string

const (
	ScanStatusSuccess ScanStatus = "success"
	ScanStatusPartial ScanStatus = "partial" // completed with degraded data
	ScanStatusFailed  ScanStatus = "failed"
)

// ScanStage identifies a pipeline stage, used both for state tracking and for
// reporting where a failed scan stopped.
type ScanStage string

const (
	StageIdle             ScanStage = "idle"
	StageFetchingHoldings ScanStage = "holdings"
	StageScanningNews     ScanStage = "news"
	StageAnalyzingRisk    ScanStage = "risk"
	StageGeneratingReport ScanStage = "report"
	StageCompleted        ScanStage = "completed"
)

// ScanResult is the assembled outcome of one fund's scan. Created by the
// orchestrator when the scan reaches a terminal state and read-only afterward.
type ScanResult struct {
	ID          string        `json:"id"`
	FundName    string        `json:"fund_name"`
	Status      ScanStatus    `json:"status"`
	Report      string        `json:"report"`
	ActionItems []string      `json:"action_items"`
	Risk        *RiskAnalysis `json:"risk,omitempty"`

	// Populated only when Status is not success.
	FailedStage ScanStage `json:"failed_stage,omitempty"`
	Error       string    `json:"error,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
