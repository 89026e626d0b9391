// Command fundscan scans investment portfolios against market news and
// produces risk-scored narrative reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bobmcallan/fundscan/internal/app"
	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/models"
	"github.com/bobmcallan/fundscan/internal/services/scan"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to fundscan.toml (default: alongside binary, then config/)")
		fund       = flag.String("fund", "", "fund name for a single scan")
		batch      = flag.String("batch", "", "comma-separated fund names for a batch scan")
		summary    = flag.Bool("summary", false, "summary-only mode: holdings and sector allocation, no news/risk/report")
		riskOnly   = flag.Bool("risk", false, "risk-only mode: holdings, news, and risk analysis, no report")
		csvPath    = flag.String("csv", "", "export scan results to a CSV file")
		selfcheck  = flag.Bool("selfcheck", false, "run an end-to-end scan against built-in fixture data")
		asJSON     = flag.Bool("json", false, "print results as JSON")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println("fundscan " + common.GetFullVersion())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, app.Options{
		ConfigPath:  *configPath,
		UseFixtures: *selfcheck,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *selfcheck:
		os.Exit(runSelfcheck(ctx, a, *asJSON))
	case *summary:
		os.Exit(runSummary(ctx, a, *fund, *asJSON))
	case *riskOnly:
		os.Exit(runRisk(ctx, a, *fund, *asJSON))
	case *batch != "":
		os.Exit(runBatch(ctx, a, *batch, *csvPath, *asJSON))
	case *fund != "":
		os.Exit(runScan(ctx, a, *fund, *csvPath, *asJSON))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// runScan performs a single-fund scan.
func runScan(ctx context.Context, a *app.App, fund, csvPath string, asJSON bool) int {
	result, err := a.ScanService.Scan(ctx, fund)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan rejected: %v\n", err)
		return 1
	}

	printResult(result, asJSON)

	if csvPath != "" {
		if err := scan.ExportCSV(csvPath, []*models.ScanResult{result}); err != nil {
			fmt.Fprintf(os.Stderr, "CSV export failed: %v\n", err)
			return 1
		}
	}

	if result.Status == models.ScanStatusFailed {
		return 1
	}
	return 0
}

// runBatch performs a multi-fund batch scan. Exit code is non-zero if any
// fund in the batch ends failed.
func runBatch(ctx context.Context, a *app.App, batch, csvPath string, asJSON bool) int {
	var funds []string
	for _, f := range strings.Split(batch, ",") {
		if f = strings.TrimSpace(f); f != "" {
			funds = append(funds, f)
		}
	}
	if len(funds) == 0 {
		fmt.Fprintln(os.Stderr, "No fund names supplied for batch scan")
		return 2
	}

	results, err := a.Batch.RunBatch(ctx, funds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch interrupted: %v\n", err)
	}

	failed := 0
	for _, r := range results {
		printResult(r, asJSON)
		if r.Status == models.ScanStatusFailed {
			failed++
		}
	}

	if csvPath != "" {
		if exportErr := scan.ExportCSV(csvPath, results); exportErr != nil {
			fmt.Fprintf(os.Stderr, "CSV export failed: %v\n", exportErr)
			return 1
		}
	}

	if err != nil || failed > 0 {
		return 1
	}
	return 0
}

// runSummary prints the cheap holdings-only view of a fund.
func runSummary(ctx context.Context, a *app.App, fund string, asJSON bool) int {
	if fund == "" {
		fmt.Fprintln(os.Stderr, "Summary mode requires -fund")
		return 2
	}

	s, err := a.ScanService.Summarize(ctx, fund)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Summary failed: %v\n", err)
		return 1
	}

	if asJSON {
		printJSON(s)
		return 0
	}

	fmt.Printf("Fund: %s\nTotal value: $%.2f\nHoldings: %d\nLast updated: %s\n",
		s.FundName, s.TotalValue, s.HoldingsCount, s.LastUpdated.Format("2006-01-02 15:04"))
	for sector, frac := range s.SectorAllocation {
		fmt.Printf("  %-24s %5.1f%%\n", sector, frac*100)
	}
	return 0
}

// runRisk prints the risk assessment for a fund without generating a report.
func runRisk(ctx context.Context, a *app.App, fund string, asJSON bool) int {
	if fund == "" {
		fmt.Fprintln(os.Stderr, "Risk mode requires -fund")
		return 2
	}

	r, err := a.ScanService.AssessRisk(ctx, fund)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Risk assessment failed: %v\n", err)
		return 1
	}

	if asJSON {
		printJSON(r)
		return 0
	}

	fmt.Printf("Risk level: %s (score %d/100)\n", strings.ToUpper(string(r.OverallRiskLevel)), r.RiskScore)
	for name, v := range r.ExposureMetrics {
		fmt.Printf("  %-28s %.2f\n", name, v)
	}
	for _, f := range r.KeyFindings {
		fmt.Println("  finding: " + f)
	}
	for _, a := range r.ActionItems {
		fmt.Println("  action:  " + a)
	}
	return 0
}

// runSelfcheck scans a fixture fund end to end and verifies the pipeline
// produced a complete result.
func runSelfcheck(ctx context.Context, a *app.App, asJSON bool) int {
	result, err := a.ScanService.Scan(ctx, "Tech Growth Fund")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Selfcheck failed: %v\n", err)
		return 1
	}

	printResult(result, asJSON)

	if result.Status != models.ScanStatusSuccess || result.Report == "" || result.Risk == nil {
		fmt.Fprintln(os.Stderr, "Selfcheck failed: incomplete scan result")
		return 1
	}

	fmt.Println("Selfcheck passed")
	return 0
}

func printResult(r *models.ScanResult, asJSON bool) {
	if asJSON {
		printJSON(r)
		return
	}

	fmt.Printf("=== %s [%s] ===\n", r.FundName, strings.ToUpper(string(r.Status)))
	if r.Status == models.ScanStatusFailed {
		fmt.Printf("Failed at stage %q: %s\n\n", r.FailedStage, r.Error)
		return
	}
	if r.Report != "" {
		fmt.Println(r.Report)
	}
	if len(r.ActionItems) > 0 {
		fmt.Println("Action items:")
		for _, item := range r.ActionItems {
			fmt.Println("- " + item)
		}
	}
	fmt.Println()
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
