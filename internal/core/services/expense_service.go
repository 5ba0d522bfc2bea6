package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/apperrors"
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type expenseService struct {
	BaseService
	expenseRepo     portsrepo.ExpenseRepositoryWithTx
	transactionRepo portsrepo.TransactionRepositoryFacade
	ledger          portssvc.LedgerTxSvc
}

// ExpenseOption configures optional expense service dependencies.
type ExpenseOption func(*expenseService)

// WithExpenseCompensator sends failed best-effort effects to a retry queue.
func WithExpenseCompensator(c portssvc.CompensationEnqueuer) ExpenseOption {
	return func(s *expenseService) {
		s.Compensator = c
	}
}

// WithExpenseClock overrides the time source used for audit timestamps.
func WithExpenseClock(now func() time.Time) ExpenseOption {
	return func(s *expenseService) {
		s.Now = now
	}
}

// NewExpenseService creates a new expense service.
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryWithTx,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	ledger portssvc.LedgerTxSvc,
	opts ...ExpenseOption,
) portssvc.ExpenseSvcFacade {
	s := &expenseService{
		expenseRepo:     expenseRepo,
		transactionRepo: transactionRepo,
		ledger:          ledger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error) {
	logger := s.GetLogger(ctx)
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}
	if !domain.IsMoneyScale(req.Amount) {
		return nil, fmt.Errorf("%w: expense amount %s has more than %d decimal places", apperrors.ErrValidation, req.Amount, domain.MoneyScale)
	}
	if req.FundType != nil && !req.FundType.IsValid() {
		return nil, fmt.Errorf("%w: unknown fund type %q", apperrors.ErrNotFound, *req.FundType)
	}

	now := s.now()
	expense := domain.Expense{
		ExpenseID:     uuid.NewString(),
		Amount:        req.Amount,
		FundType:      req.FundType,
		Description:   req.Description,
		TransactionID: req.TransactionID,
		InventoryID:   req.InventoryID,
		VendorID:      req.VendorID,
		ExpenseDate:   req.ExpenseDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := s.RunInTx(ctx, s.expenseRepo, func(tx pgx.Tx) error {
		if expense.TransactionID != nil {
			project, err := s.transactionRepo.FindTransactionByIDForUpdateInTx(ctx, tx, *expense.TransactionID)
			if err != nil {
				return err
			}
			if project.IsDeleted {
				return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyArchived, project.TransactionID)
			}
		}
		if err := s.expenseRepo.SaveExpenseInTx(ctx, tx, expense); err != nil {
			return err
		}
		if _, err := s.ledger.ApplyExpenseImpactInTx(ctx, tx, expense, domain.SourceExpense, nil, userID); err != nil {
			return err
		}
		if expense.TransactionID != nil {
			if _, err := s.ledger.RecalculateCapitalCostInTx(ctx, tx, *expense.TransactionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create expense", slog.String("error", err.Error()))
		return nil, err
	}

	if expense.AffectsFund() {
		s.ledger.NotifyBalancesChanged(ctx)
	}
	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID), slog.String("amount", expense.Amount.String()))
	return &expense, nil
}

func (s *expenseService) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		s.GetLogger(ctx).Warn("Failed to find expense", slog.String("expense_id", expenseID), slog.String("error", err.Error()))
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := portsrepo.ExpenseFilter{
		TransactionID:   params.TransactionID,
		FundType:        params.FundType,
		IncludeArchived: params.IncludeArchived,
	}
	expenses, err := s.expenseRepo.ListExpenses(ctx, filter, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses")
		return nil, err
	}
	return expenses, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, userID string) (*domain.Expense, error) {
	logger := s.GetLogger(ctx).With(slog.String("expense_id", expenseID))
	if req.Amount == nil && req.Description == nil {
		logger.Debug("No fields provided for expense update")
		return s.GetExpense(ctx, expenseID)
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}
	if req.Amount != nil && !domain.IsMoneyScale(*req.Amount) {
		return nil, fmt.Errorf("%w: expense amount %s has more than %d decimal places", apperrors.ErrValidation, *req.Amount, domain.MoneyScale)
	}

	var expense *domain.Expense
	var pending []domain.Compensation
	err := s.RunInTx(ctx, s.expenseRepo, func(tx pgx.Tx) error {
		var err error
		expense, err = s.expenseRepo.FindExpenseByIDForUpdateInTx(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		if expense.IsDeleted {
			return fmt.Errorf("%w: expense %s", apperrors.ErrAlreadyArchived, expenseID)
		}

		original := expense.Amount
		if req.Amount != nil {
			expense.Amount = *req.Amount
		}
		if req.Description != nil {
			expense.Description = *req.Description
		}
		expense.LastUpdatedAt = s.now()
		expense.LastUpdatedBy = userID
		if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, *expense); err != nil {
			return err
		}

		delta := original.Sub(expense.Amount)
		if delta.IsZero() {
			return nil
		}
		if expense.TransactionID != nil {
			if _, err := s.ledger.RecalculateCapitalCostInTx(ctx, tx, *expense.TransactionID); err != nil {
				return err
			}
		}

		pending = s.applyEditDeltas(ctx, tx, *expense, delta, userID)
		return nil
	})
	if err != nil {
		logger.Error("Failed to update expense", slog.String("error", err.Error()))
		return nil, err
	}

	s.ledger.NotifyBalancesChanged(ctx)
	s.EnqueueCompensations(ctx, pending)
	logger.Info("Expense updated")
	return expense, nil
}

// applyEditDeltas runs the secondary effects of an amount edit, each in its own savepoint.
func (s *expenseService) applyEditDeltas(ctx context.Context, tx pgx.Tx, expense domain.Expense, delta decimal.Decimal, userID string) []domain.Compensation {
	var pending []domain.Compensation

	financeDelta := domain.Compensation{Kind: domain.CompensateFinanceDelta, ExpenseID: expense.ExpenseID, Delta: delta, UserID: userID}
	if c := s.RunBestEffort(ctx, tx, financeDelta, func(sp pgx.Tx) error {
		_, err := s.ledger.ApplyExpenseAmountDeltaInTx(ctx, sp, "", delta)
		return err
	}); c != nil {
		pending = append(pending, *c)
	}

	if expense.FundType != nil {
		editID := uuid.NewString()
		fundDelta := domain.Compensation{Kind: domain.CompensateFundEditDelta, ExpenseID: expense.ExpenseID, Delta: delta, CorrelationID: editID, UserID: userID}
		if c := s.RunBestEffort(ctx, tx, fundDelta, func(sp pgx.Tx) error {
			_, err := s.ledger.AdjustFundForExpenseEditInTx(ctx, sp, expense, delta, editID, userID)
			return err
		}); c != nil {
			pending = append(pending, *c)
		}
	}
	return pending
}

func (s *expenseService) ArchiveExpense(ctx context.Context, expenseID string, userID string) (*domain.Expense, error) {
	logger := s.GetLogger(ctx).With(slog.String("expense_id", expenseID))

	var expense *domain.Expense
	var pending []domain.Compensation
	err := s.RunInTx(ctx, s.expenseRepo, func(tx pgx.Tx) error {
		var err error
		expense, err = s.expenseRepo.FindExpenseByIDForUpdateInTx(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		if expense.IsDeleted {
			return fmt.Errorf("%w: expense %s", apperrors.ErrAlreadyArchived, expenseID)
		}

		now := s.now()
		batchID := uuid.NewString()
		expense.Archive(userID, batchID, now)
		expense.LastUpdatedAt = now
		expense.LastUpdatedBy = userID
		if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, *expense); err != nil {
			return err
		}
		if expense.TransactionID != nil {
			if _, err := s.ledger.RecalculateCapitalCostInTx(ctx, tx, *expense.TransactionID); err != nil {
				return err
			}
		}

		reversal := domain.Compensation{Kind: domain.CompensateReverseExpense, ExpenseID: expense.ExpenseID, Delta: expense.Amount, CorrelationID: batchID, UserID: userID}
		archived := *expense
		if c := s.RunBestEffort(ctx, tx, reversal, func(sp pgx.Tx) error {
			_, err := s.ledger.ReverseExpenseImpactInTx(ctx, sp, archived, userID)
			return err
		}); c != nil {
			pending = append(pending, *c)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to archive expense", slog.String("error", err.Error()))
		return nil, err
	}

	s.ledger.NotifyBalancesChanged(ctx)
	s.EnqueueCompensations(ctx, pending)
	logger.Info("Expense archived", slog.String("deletion_batch_id", *expense.DeletionBatchID))
	return expense, nil
}

func (s *expenseService) RestoreExpense(ctx context.Context, expenseID string, userID string) (*domain.Expense, error) {
	logger := s.GetLogger(ctx).With(slog.String("expense_id", expenseID))

	// The project link never changes, so it is read before locking to keep the
	// project-then-expense lock order used by project archive.
	current, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		logger.Warn("Failed to restore expense", slog.String("error", err.Error()))
		return nil, err
	}

	var expense *domain.Expense
	var pending []domain.Compensation
	err = s.RunInTx(ctx, s.expenseRepo, func(tx pgx.Tx) error {
		if current.TransactionID != nil {
			project, err := s.transactionRepo.FindTransactionByIDForUpdateInTx(ctx, tx, *current.TransactionID)
			if err != nil {
				return err
			}
			if project.IsDeleted {
				return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyArchived, project.TransactionID)
			}
		}

		var err error
		expense, err = s.expenseRepo.FindExpenseByIDForUpdateInTx(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		if !expense.IsDeleted {
			return fmt.Errorf("%w: expense %s", apperrors.ErrAlreadyActive, expenseID)
		}

		batchID := expense.DeletionBatchID
		now := s.now()
		expense.Unarchive()
		expense.LastUpdatedAt = now
		expense.LastUpdatedBy = userID
		if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, *expense); err != nil {
			return err
		}

		pending = s.reapplyRestoredExpense(ctx, tx, *expense, batchID, userID)
		if expense.TransactionID != nil {
			recalc := domain.Compensation{Kind: domain.CompensateRecalcCapitalCost, ExpenseID: expense.ExpenseID, TransactionID: *expense.TransactionID, UserID: userID}
			if c := s.RunBestEffort(ctx, tx, recalc, func(sp pgx.Tx) error {
				_, err := s.ledger.RecalculateCapitalCostInTx(ctx, sp, *expense.TransactionID)
				return err
			}); c != nil {
				pending = append(pending, *c)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to restore expense", slog.String("error", err.Error()))
		return nil, err
	}

	s.ledger.NotifyBalancesChanged(ctx)
	s.EnqueueCompensations(ctx, pending)
	logger.Info("Expense restored")
	return expense, nil
}

// reapplyRestoredExpense debits the fund again for a restored expense in a savepoint.
// The archive batch ID makes the debit idempotent.
func (s *expenseService) reapplyRestoredExpense(ctx context.Context, tx pgx.Tx, expense domain.Expense, batchID *string, userID string) []domain.Compensation {
	if !expense.AffectsFund() {
		return nil
	}
	debit := domain.Compensation{Kind: domain.CompensateApplyExpense, ExpenseID: expense.ExpenseID, Delta: expense.Amount, UserID: userID}
	if batchID != nil {
		debit.CorrelationID = *batchID
	}
	if c := s.RunBestEffort(ctx, tx, debit, func(sp pgx.Tx) error {
		_, err := s.ledger.ApplyExpenseImpactInTx(ctx, sp, expense, domain.SourceExpenseRestore, batchID, userID)
		return err
	}); c != nil {
		return []domain.Compensation{*c}
	}
	return nil
}
