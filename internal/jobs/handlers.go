package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/backoffice_ledger/internal/apperrors"
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/middleware"
	"github.com/hibiken/asynq"
)

// CompensationHandler replays best-effort ledger effects that failed after their primary mutation committed.
// Every replay is keyed by the original correlation ID, so retries never apply an effect twice.
type CompensationHandler struct {
	Ledger   portssvc.LedgerSvcFacade
	Expenses portsrepo.ExpenseReader
	Logger   *slog.Logger
	Metrics  *Metrics
}

// TaskHandlers lists the handler for every compensation task type.
func (h *CompensationHandler) TaskHandlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskReverseExpense, Handler: h.Handle},
		{Type: TaskApplyExpense, Handler: h.Handle},
		{Type: TaskFinanceDelta, Handler: h.Handle},
		{Type: TaskRecalcCapitalCost, Handler: h.Handle},
		{Type: TaskFundEditDelta, Handler: h.Handle},
	}
}

// Handle decodes the compensation and dispatches on its kind.
func (h *CompensationHandler) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	var c domain.Compensation
	if err := json.Unmarshal(t.Payload(), &c); err != nil {
		h.logger().Error("Malformed compensation payload", slog.String("task", t.Type()), slog.String("error", err.Error()))
		return fmt.Errorf("decode %s: %w", t.Type(), asynq.SkipRetry)
	}

	logger := h.logger().With(
		slog.String("task", t.Type()),
		slog.String("expense_id", c.ExpenseID),
		slog.String("transaction_id", c.TransactionID),
		slog.String("correlation_id", c.CorrelationID),
	)
	ctx = middleware.WithLogger(ctx, logger)

	tracker := h.Metrics.Track(t.Type())
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	err := h.dispatch(ctx, c)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Nothing left to compensate against; archive instead of retrying.
		logger.Error("Compensation target missing", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		logger.Warn("Compensation attempt failed", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Compensation applied")
	return nil
}

func (h *CompensationHandler) dispatch(ctx context.Context, c domain.Compensation) error {
	switch c.Kind {
	case domain.CompensateReverseExpense:
		snapshot, err := h.expenseAsOfEvent(ctx, c)
		if err != nil {
			return err
		}
		snapshot.DeletionBatchID = &c.CorrelationID
		_, err = h.Ledger.ReverseExpenseImpact(ctx, snapshot, c.UserID)
		return err

	case domain.CompensateApplyExpense:
		snapshot, err := h.expenseAsOfEvent(ctx, c)
		if err != nil {
			return err
		}
		var correlationID *string
		if c.CorrelationID != "" {
			correlationID = &c.CorrelationID
		}
		_, err = h.Ledger.ApplyExpenseImpact(ctx, snapshot, domain.SourceExpenseRestore, correlationID, c.UserID)
		return err

	case domain.CompensateFinanceDelta:
		_, err := h.Ledger.ApplyExpenseAmountDelta(ctx, c.CompanyFinanceID, c.Delta)
		return err

	case domain.CompensateRecalcCapitalCost:
		_, err := h.Ledger.RecalculateCapitalCost(ctx, c.TransactionID)
		return err

	case domain.CompensateFundEditDelta:
		expense, err := h.Expenses.FindExpenseByID(ctx, c.ExpenseID)
		if err != nil {
			return err
		}
		_, err = h.Ledger.AdjustFundForExpenseEdit(ctx, *expense, c.Delta, c.CorrelationID, c.UserID)
		return err
	}
	return fmt.Errorf("%w: unknown compensation kind %q", asynq.SkipRetry, c.Kind)
}

// expenseAsOfEvent loads the expense and restores the amount it had when the failed effect was attempted.
func (h *CompensationHandler) expenseAsOfEvent(ctx context.Context, c domain.Compensation) (domain.Expense, error) {
	expense, err := h.Expenses.FindExpenseByID(ctx, c.ExpenseID)
	if err != nil {
		return domain.Expense{}, err
	}
	snapshot := *expense
	if c.Delta.IsPositive() {
		snapshot.Amount = c.Delta
	}
	return snapshot, nil
}

func (h *CompensationHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
