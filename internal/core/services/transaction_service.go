package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
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

type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryWithTx
	expenseRepo     portsrepo.ExpenseRepositoryFacade
	ledger          portssvc.LedgerSvcFacade
}

// TransactionOption configures optional project transaction service dependencies.
type TransactionOption func(*transactionService)

// WithTransactionCompensator sends failed best-effort effects to a retry queue.
func WithTransactionCompensator(c portssvc.CompensationEnqueuer) TransactionOption {
	return func(s *transactionService) {
		s.Compensator = c
	}
}

// WithTransactionClock overrides the time source used for audit timestamps.
func WithTransactionClock(now func() time.Time) TransactionOption {
	return func(s *transactionService) {
		s.Now = now
	}
}

// NewTransactionService creates a new project transaction service.
func NewTransactionService(
	transactionRepo portsrepo.TransactionRepositoryWithTx,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	ledger portssvc.LedgerSvcFacade,
	opts ...TransactionOption,
) portssvc.TransactionSvcFacade {
	s := &transactionService{
		transactionRepo: transactionRepo,
		expenseRepo:     expenseRepo,
		ledger:          ledger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: transaction name is required", apperrors.ErrValidation)
	}

	now := s.now()
	project := domain.Transaction{
		TransactionID: uuid.NewString(),
		Name:          name,
		ClientID:      req.ClientID,
		VendorID:      req.VendorID,
		CapitalCost:   decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.transactionRepo.SaveTransaction(ctx, project); err != nil {
		s.LogError(ctx, err, "Failed to save transaction")
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created", slog.String("transaction_id", project.TransactionID))
	return &project, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	project, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.GetLogger(ctx).Warn("Failed to find transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, err
	}
	return project, nil
}

func (s *transactionService) ArchiveTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", transactionID))

	var project *domain.Transaction
	var pending []domain.Compensation
	var cascaded int
	err := s.RunInTx(ctx, s.transactionRepo, func(tx pgx.Tx) error {
		var err error
		project, err = s.transactionRepo.FindTransactionByIDForUpdateInTx(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if project.IsDeleted {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyArchived, transactionID)
		}

		now := s.now()
		batchID := uuid.NewString()
		project.Archive(userID, batchID, now)
		project.LastUpdatedAt = now
		project.LastUpdatedBy = userID
		if err := s.transactionRepo.UpdateTransactionSoftDeleteInTx(ctx, tx, *project); err != nil {
			return err
		}

		expenses, err := s.expenseRepo.ListActiveExpensesByTransactionForUpdateInTx(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		for _, expense := range expenses {
			expense.Archive(userID, batchID, now)
			expense.LastUpdatedAt = now
			expense.LastUpdatedBy = userID
			if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, expense); err != nil {
				return err
			}

			reversal := domain.Compensation{Kind: domain.CompensateReverseExpense, ExpenseID: expense.ExpenseID, TransactionID: transactionID, Delta: expense.Amount, CorrelationID: batchID, UserID: userID}
			archived := expense
			if c := s.RunBestEffort(ctx, tx, reversal, func(sp pgx.Tx) error {
				_, err := s.ledger.ReverseExpenseImpactInTx(ctx, sp, archived, userID)
				return err
			}); c != nil {
				pending = append(pending, *c)
			}
		}
		cascaded = len(expenses)

		project.CapitalCost, err = s.ledger.RecalculateCapitalCostInTx(ctx, tx, transactionID)
		return err
	})
	if err != nil {
		logger.Warn("Failed to archive transaction", slog.String("error", err.Error()))
		return nil, err
	}

	s.ledger.NotifyBalancesChanged(ctx)
	s.EnqueueCompensations(ctx, pending)
	logger.Info("Transaction archived", slog.Int("expenses_archived", cascaded), slog.String("deletion_batch_id", *project.DeletionBatchID))
	return project, nil
}

func (s *transactionService) RestoreTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", transactionID))

	var project *domain.Transaction
	var pending []domain.Compensation
	var restored int
	err := s.RunInTx(ctx, s.transactionRepo, func(tx pgx.Tx) error {
		var err error
		project, err = s.transactionRepo.FindTransactionByIDForUpdateInTx(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if !project.IsDeleted {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyActive, transactionID)
		}

		batchID := project.DeletionBatchID
		now := s.now()
		project.Unarchive()
		project.LastUpdatedAt = now
		project.LastUpdatedBy = userID
		if err := s.transactionRepo.UpdateTransactionSoftDeleteInTx(ctx, tx, *project); err != nil {
			return err
		}

		// Only expenses archived together with the transaction come back.
		if batchID != nil {
			expenses, err := s.expenseRepo.ListExpensesByDeletionBatchForUpdateInTx(ctx, tx, transactionID, *batchID)
			if err != nil {
				return err
			}
			for _, expense := range expenses {
				expense.Unarchive()
				expense.LastUpdatedAt = now
				expense.LastUpdatedBy = userID
				if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, expense); err != nil {
					return err
				}
				if !expense.AffectsFund() {
					continue
				}
				debit := domain.Compensation{Kind: domain.CompensateApplyExpense, ExpenseID: expense.ExpenseID, TransactionID: transactionID, Delta: expense.Amount, CorrelationID: *batchID, UserID: userID}
				active := expense
				if c := s.RunBestEffort(ctx, tx, debit, func(sp pgx.Tx) error {
					_, err := s.ledger.ApplyExpenseImpactInTx(ctx, sp, active, domain.SourceExpenseRestore, batchID, userID)
					return err
				}); c != nil {
					pending = append(pending, *c)
				}
			}
			restored = len(expenses)
		}

		recalc := domain.Compensation{Kind: domain.CompensateRecalcCapitalCost, TransactionID: transactionID, UserID: userID}
		if c := s.RunBestEffort(ctx, tx, recalc, func(sp pgx.Tx) error {
			capitalCost, err := s.ledger.RecalculateCapitalCostInTx(ctx, sp, transactionID)
			if err == nil {
				project.CapitalCost = capitalCost
			}
			return err
		}); c != nil {
			pending = append(pending, *c)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to restore transaction", slog.String("error", err.Error()))
		return nil, err
	}

	s.ledger.NotifyBalancesChanged(ctx)
	s.EnqueueCompensations(ctx, pending)
	logger.Info("Transaction restored", slog.Int("expenses_restored", restored))
	return project, nil
}

func (s *transactionService) RecalculateCapitalCost(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	capitalCost, err := s.ledger.RecalculateCapitalCost(ctx, transactionID)
	if err != nil {
		s.GetLogger(ctx).Warn("Failed to recalculate capital cost", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return decimal.Zero, err
	}
	s.LogInfo(ctx, "Capital cost recalculated", slog.String("transaction_id", transactionID), slog.String("capital_cost", capitalCost.String()))
	return capitalCost, nil
}
