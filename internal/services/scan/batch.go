package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/models"
)

// BatchRunner implements BatchService: it fans the orchestrator out over many
// funds under a shared rate limit, sequentially by default or with bounded
// concurrency, and never lets one fund's failure abort the batch.
type BatchRunner struct {
	scanner interfaces.ScanService
	limiter *Limiter
	cfg     common.BatchConfig
	logger  *common.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// BatchOption configures the batch runner
type BatchOption func(*BatchRunner)

// WithLimiter replaces the shared rate limiter
func WithBatchLimiter(l *Limiter) BatchOption {
	return func(b *BatchRunner) {
		b.limiter = l
	}
}

// WithBatchSleep replaces the inter-scan delay sleeper, for tests.
func WithBatchSleep(sleep func(ctx context.Context, d time.Duration) error) BatchOption {
	return func(b *BatchRunner) {
		b.sleep = sleep
	}
}

// NewBatchRunner creates a batch runner over the given scanner
func NewBatchRunner(scanner interfaces.ScanService, cfg common.BatchConfig, logger *common.Logger, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		scanner: scanner,
		limiter: NewLimiter(cfg.RatePerSec, 1),
		cfg:     cfg,
		logger:  logger,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RunBatch scans each fund and returns one result per input fund, in input
// order regardless of completion order. On cancellation the results completed
// so far are returned, in order, alongside the context error; nothing is
// fabricated for abandoned scans.
func (b *BatchRunner) RunBatch(ctx context.Context, fundNames []string) ([]*models.ScanResult, error) {
	if len(fundNames) == 0 {
		return []*models.ScanResult{}, nil
	}

	b.logger.Info().
		Int("funds", len(fundNames)).
		Int("max_concurrent", b.cfg.MaxConcurrent).
		Msg("Starting batch scan")

	slots := make([]*models.ScanResult, len(fundNames))

	var err error
	if b.cfg.MaxConcurrent > 1 {
		err = b.runConcurrent(ctx, fundNames, slots)
	} else {
		err = b.runSequential(ctx, fundNames, slots)
	}

	// Compact: drop slots for scans that never ran (cancellation), keeping
	// input order for those that completed.
	results := make([]*models.ScanResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}

	b.logger.Info().
		Int("completed", len(results)).
		Int("requested", len(fundNames)).
		Msg("Batch scan finished")

	return results, err
}

// runSequential scans funds one at a time with the mandatory minimum delay
// between invocations.
func (b *BatchRunner) runSequential(ctx context.Context, fundNames []string, slots []*models.ScanResult) error {
	minDelay := b.cfg.GetMinDelay()

	for i, fund := range fundNames {
		if i > 0 && minDelay > 0 {
			if err := b.sleep(ctx, minDelay); err != nil {
				return err
			}
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
		slots[i] = b.scanOne(ctx, fund)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// runConcurrent scans funds with a bounded worker pool. Results are written to
// their originating input slot, not appended in completion order; the shared
// limiter keeps the aggregate request rate within budget.
func (b *BatchRunner) runConcurrent(ctx context.Context, fundNames []string, slots []*models.ScanResult) error {
	sem := make(chan struct{}, b.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, fund := range fundNames {
		if ctx.Err() != nil {
			break
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		if err := b.limiter.Wait(ctx); err != nil {
			<-sem
			break
		}

		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[idx] = b.scanOne(ctx, name)
		}(i, fund)
	}

	wg.Wait()
	return ctx.Err()
}

// scanOne runs a single scan, converting pre-pipeline validation errors into a
// failed result so the batch keeps its one-result-per-fund shape.
func (b *BatchRunner) scanOne(ctx context.Context, fund string) *models.ScanResult {
	if ctx.Err() != nil {
		return nil
	}

	started := time.Now()
	result, err := b.scanner.Scan(ctx, fund)
	if ctx.Err() != nil && (err != nil || result == nil || result.Status == models.ScanStatusFailed) {
		// Abandoned mid-flight: no result is fabricated for this fund.
		return nil
	}
	if err != nil {
		b.logger.Warn().Str("fund", fund).Err(err).Msg("Scan rejected")
		return &models.ScanResult{
			ID:          uuid.NewString(),
			FundName:    fund,
			Status:      models.ScanStatusFailed,
			FailedStage: models.StageIdle,
			Error:       err.Error(),
			ActionItems: []string{},
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
	}
	return result
}

// Ensure BatchRunner implements BatchService
var _ interfaces.BatchService = (*BatchRunner)(nil)
