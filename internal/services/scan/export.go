package scan

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/fundscan/internal/models"
)

// csvHeader is the column layout for scan result exports.
var csvHeader = []string{
	"fund_name", "status", "risk_score", "risk_level",
	"failed_stage", "error", "action_items", "started_at", "completed_at",
}

// WriteCSV writes scan results as CSV. Action items are joined with "; " so
// each fund stays on one row.
func WriteCSV(w io.Writer, results []*models.ScanResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		score, level := "", ""
		if r.Risk != nil {
			score = strconv.Itoa(r.Risk.RiskScore)
			level = string(r.Risk.OverallRiskLevel)
		}

		row := []string{
			r.FundName,
			string(r.Status),
			score,
			level,
			string(r.FailedStage),
			r.Error,
			strings.Join(r.ActionItems, "; "),
			r.StartedAt.Format(time.RFC3339),
			r.CompletedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", r.FundName, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes scan results to a file path.
func ExportCSV(path string, results []*models.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	return WriteCSV(f, results)
}
