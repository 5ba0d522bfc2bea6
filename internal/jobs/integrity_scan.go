package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/middleware"
	"github.com/hibiken/asynq"
)

// IntegrityScanJob compares every fund's stored balance with its audit trail.
type IntegrityScanJob struct {
	Ledger  portssvc.LedgerReaderSvc
	Logger  *slog.Logger
	Metrics *Metrics
}

// Handle runs the scan. Drift is reported, never corrected.
func (j *IntegrityScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	var payload IntegrityScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode %s: %w", t.Type(), asynq.SkipRetry)
		}
	}
	fundTypes := payload.FundTypes
	if len(fundTypes) == 0 {
		fundTypes = domain.AllFundTypes
	}

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx = middleware.WithLogger(ctx, logger.With(slog.String("task", t.Type())))

	tracker := j.Metrics.Track(t.Type())
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	var errs []error
	drifted := 0
	for _, ft := range fundTypes {
		result, err := j.Ledger.VerifyFundIntegrity(ctx, ft)
		if err != nil {
			errs = append(errs, fmt.Errorf("verify %s: %w", ft, err))
			continue
		}
		j.Metrics.SetDrift(string(ft), result.Drift.InexactFloat64())
		if !result.Consistent() {
			drifted++
			logger.Warn("Fund integrity drift",
				slog.String("fund_type", string(ft)),
				slog.String("current_balance", result.CurrentBalance.String()),
				slog.String("expected_balance", result.ExpectedBalance.String()),
				slog.String("drift", result.Drift.String()),
				slog.Int("records_checked", result.RecordsChecked),
			)
		}
	}
	logger.Info("Integrity scan finished", slog.Int("funds_checked", len(fundTypes)), slog.Int("funds_drifted", drifted))
	return errors.Join(errs...)
}
