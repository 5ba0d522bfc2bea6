package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/middleware"
	"github.com/jackc/pgx/v5"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Compensator portssvc.CompensationEnqueuer
	Now         func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// now returns the current time at the precision Postgres stores.
func (s *BaseService) now() time.Time {
	t := time.Now()
	if s.Now != nil {
		t = s.Now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

// RunInTx runs fn inside a new database transaction and commits when fn succeeds.
// Any error from fn rolls the whole transaction back.
func (s *BaseService) RunInTx(ctx context.Context, tm portsrepo.TransactionManager, fn func(tx pgx.Tx) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tm.Rollback(ctx, tx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.LogError(ctx, rbErr, "Failed to roll back transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tm.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// RunBestEffort runs fn inside a savepoint of tx. A failure rolls back only the savepoint,
// is logged at WARN and returns the compensation to enqueue once tx commits.
func (s *BaseService) RunBestEffort(ctx context.Context, tx pgx.Tx, compensation domain.Compensation, fn func(sp pgx.Tx) error) *domain.Compensation {
	err := runInSavepoint(ctx, tx, fn)
	if err == nil {
		return nil
	}

	s.GetLogger(ctx).Warn("Best-effort ledger effect failed",
		slog.String("operation", string(compensation.Kind)),
		slog.String("expense_id", compensation.ExpenseID),
		slog.String("transaction_id", compensation.TransactionID),
		slog.String("error", err.Error()),
	)
	compensation.Reason = err.Error()
	return &compensation
}

// EnqueueCompensations hands failed best-effort effects to the retry queue.
// Enqueue failures are logged and never returned.
func (s *BaseService) EnqueueCompensations(ctx context.Context, pending []domain.Compensation) {
	if len(pending) == 0 {
		return
	}
	logger := s.GetLogger(ctx)
	if s.Compensator == nil {
		for _, c := range pending {
			logger.Error("Compensation dropped, no queue configured", slog.String("operation", string(c.Kind)), slog.String("expense_id", c.ExpenseID), slog.String("transaction_id", c.TransactionID))
		}
		return
	}
	for _, c := range pending {
		if err := s.Compensator.EnqueueCompensation(ctx, c); err != nil {
			logger.Error("Failed to enqueue compensation", slog.String("operation", string(c.Kind)), slog.String("expense_id", c.ExpenseID), slog.String("error", err.Error()))
		}
	}
}

func runInSavepoint(ctx context.Context, tx pgx.Tx, fn func(sp pgx.Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back savepoint: %w", rbErr))
		}
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}
