package services

import (
	"context"
	"errors"
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

const maxFundTransactionPageSize = 100

// ledgerService owns every mutation of fund balances, capital cost and company totals.
type ledgerService struct {
	BaseService
	fundRepo        portsrepo.FundRepositoryWithTx
	transactionRepo portsrepo.TransactionRepositoryWithTx
	financeRepo     portsrepo.CompanyFinanceRepositoryFacade
	cache           portssvc.BalanceCache
}

// LedgerOption configures optional ledger dependencies.
type LedgerOption func(*ledgerService)

// WithBalanceCache serves GetFundBalances through cache.
func WithBalanceCache(cache portssvc.BalanceCache) LedgerOption {
	return func(s *ledgerService) {
		s.cache = cache
	}
}

// WithLedgerClock overrides the time source used for audit timestamps.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) {
		s.Now = now
	}
}

// NewLedgerService creates the ledger engine.
func NewLedgerService(
	fundRepo portsrepo.FundRepositoryWithTx,
	transactionRepo portsrepo.TransactionRepositoryWithTx,
	financeRepo portsrepo.CompanyFinanceRepositoryFacade,
	opts ...LedgerOption,
) portssvc.LedgerSvcFacade {
	s := &ledgerService{
		fundRepo:        fundRepo,
		transactionRepo: transactionRepo,
		financeRepo:     financeRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) EnsureFundBalances(ctx context.Context) error {
	if err := s.fundRepo.SeedFundBalances(ctx, domain.AllFundTypes, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to seed fund balances")
		return fmt.Errorf("failed to seed fund balances: %w", err)
	}
	return nil
}

func (s *ledgerService) GetFundBalances(ctx context.Context) ([]domain.FundBalance, error) {
	load := func(ctx context.Context) ([]domain.FundBalance, error) {
		if err := s.EnsureFundBalances(ctx); err != nil {
			return nil, err
		}
		return s.fundRepo.ListFundBalances(ctx)
	}
	if s.cache == nil {
		return load(ctx)
	}
	return s.cache.FetchBalances(ctx, load)
}

func (s *ledgerService) NotifyBalancesChanged(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.GetLogger(ctx).Warn("Failed to invalidate balance cache", slog.String("error", err.Error()))
	}
}

func (s *ledgerService) Reconcile(ctx context.Context, fundType domain.FundType, actualBalance decimal.Decimal, description string, userID string) (*domain.FundBalance, *domain.FundTransaction, error) {
	logger := s.GetLogger(ctx)
	if !fundType.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown fund type %q", apperrors.ErrNotFound, fundType)
	}
	if !domain.IsMoneyScale(actualBalance) {
		return nil, nil, fmt.Errorf("%w: balance %s has more than %d decimal places", apperrors.ErrValidation, actualBalance, domain.MoneyScale)
	}
	if err := s.EnsureFundBalances(ctx); err != nil {
		return nil, nil, err
	}
	if description == "" {
		description = "Balance reconciliation"
	}

	var balance domain.FundBalance
	var record *domain.FundTransaction
	err := s.RunInTx(ctx, s.fundRepo, func(tx pgx.Tx) error {
		locked, err := s.fundRepo.LockFundBalancesInTx(ctx, tx, []domain.FundType{fundType})
		if err != nil {
			return err
		}
		balance = locked[fundType]

		now := s.now()
		adjustment := actualBalance.Sub(balance.CurrentBalance)
		balance.CurrentBalance = actualBalance
		balance.LastReconciledBalance = actualBalance
		balance.LastReconciledAt = &now
		balance.UpdatedAt = now
		if err := s.fundRepo.UpdateFundBalanceInTx(ctx, tx, balance); err != nil {
			return err
		}

		sourceType := domain.SourceReconcile
		record = &domain.FundTransaction{
			FundTransactionID: uuid.NewString(),
			FundType:          fundType,
			TransactionType:   domain.Adjustment,
			Amount:            adjustment,
			BalanceAfter:      actualBalance,
			Description:       description,
			SourceType:        &sourceType,
			CreatedByID:       userID,
			CreatedAt:         now,
		}
		return s.fundRepo.InsertFundTransactionInTx(ctx, tx, *record)
	})
	if err != nil {
		logger.Error("Failed to reconcile fund", slog.String("fund_type", string(fundType)), slog.String("error", err.Error()))
		return nil, nil, err
	}

	s.NotifyBalancesChanged(ctx)
	logger.Info("Fund reconciled", slog.String("fund_type", string(fundType)), slog.String("adjustment", record.Amount.String()), slog.String("balance", actualBalance.String()))
	return &balance, record, nil
}

func (s *ledgerService) Transfer(ctx context.Context, from domain.FundType, to domain.FundType, amount decimal.Decimal, description string, userID string) (*domain.TransferPair, error) {
	logger := s.GetLogger(ctx)
	if from == to {
		return nil, fmt.Errorf("%w: cannot transfer from a fund to itself", apperrors.ErrValidation)
	}
	if !from.IsValid() {
		return nil, fmt.Errorf("%w: unknown fund type %q", apperrors.ErrNotFound, from)
	}
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown fund type %q", apperrors.ErrNotFound, to)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	if !domain.IsMoneyScale(amount) {
		return nil, fmt.Errorf("%w: transfer amount %s has more than %d decimal places", apperrors.ErrValidation, amount, domain.MoneyScale)
	}
	if err := s.EnsureFundBalances(ctx); err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", from, to)
	}

	var pair domain.TransferPair
	err := s.RunInTx(ctx, s.fundRepo, func(tx pgx.Tx) error {
		locked, err := s.fundRepo.LockFundBalancesInTx(ctx, tx, []domain.FundType{from, to})
		if err != nil {
			return err
		}
		source, target := locked[from], locked[to]
		if source.CurrentBalance.LessThan(amount) {
			return fmt.Errorf("%w: %s balance %s is below %s", apperrors.ErrInsufficientFunds, from, source.CurrentBalance, amount)
		}

		now := s.now()
		source.CurrentBalance = source.CurrentBalance.Sub(amount)
		source.UpdatedAt = now
		target.CurrentBalance = target.CurrentBalance.Add(amount)
		target.UpdatedAt = now
		if err := s.fundRepo.UpdateFundBalanceInTx(ctx, tx, source); err != nil {
			return err
		}
		if err := s.fundRepo.UpdateFundBalanceInTx(ctx, tx, target); err != nil {
			return err
		}

		sourceType := domain.SourceTransfer
		pair.Out = domain.FundTransaction{
			FundTransactionID: uuid.NewString(),
			FundType:          from,
			TransactionType:   domain.TransferOut,
			Amount:            amount.Neg(),
			BalanceAfter:      source.CurrentBalance,
			Description:       description,
			SourceType:        &sourceType,
			CreatedByID:       userID,
			CreatedAt:         now,
		}
		pair.In = domain.FundTransaction{
			FundTransactionID: uuid.NewString(),
			FundType:          to,
			TransactionType:   domain.TransferIn,
			Amount:            amount,
			BalanceAfter:      target.CurrentBalance,
			Description:       description,
			SourceType:        &sourceType,
			CreatedByID:       userID,
			CreatedAt:         now,
		}
		if err := s.fundRepo.InsertFundTransactionInTx(ctx, tx, pair.Out); err != nil {
			return err
		}
		if err := s.fundRepo.InsertFundTransactionInTx(ctx, tx, pair.In); err != nil {
			return err
		}

		// Each leg references the other, so both must exist before linking.
		if err := s.fundRepo.SetFundTransactionReferenceInTx(ctx, tx, pair.Out.FundTransactionID, pair.In.FundTransactionID); err != nil {
			return err
		}
		if err := s.fundRepo.SetFundTransactionReferenceInTx(ctx, tx, pair.In.FundTransactionID, pair.Out.FundTransactionID); err != nil {
			return err
		}
		outRef, inRef := pair.In.FundTransactionID, pair.Out.FundTransactionID
		pair.Out.ReferenceID = &outRef
		pair.In.ReferenceID = &inRef
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Warn("Transfer rejected", slog.String("from", string(from)), slog.String("to", string(to)), slog.String("amount", amount.String()), slog.String("error", err.Error()))
		} else {
			logger.Error("Failed to transfer between funds", slog.String("from", string(from)), slog.String("to", string(to)), slog.String("error", err.Error()))
		}
		return nil, err
	}

	s.NotifyBalancesChanged(ctx)
	logger.Info("Funds transferred", slog.String("from", string(from)), slog.String("to", string(to)), slog.String("amount", amount.String()))
	return &pair, nil
}

// fundMovement is one signed change to a fund, attributed to another entity.
type fundMovement struct {
	fundType      domain.FundType
	amount        decimal.Decimal
	sourceType    string
	sourceID      string
	correlationID *string
	description   string
	userID        string
}

// alreadyApplied reports whether a movement carrying the same origin marker was recorded before.
func (s *ledgerService) alreadyApplied(ctx context.Context, tx pgx.Tx, m fundMovement) (bool, error) {
	if m.correlationID == nil {
		return false, nil
	}
	exists, err := s.fundRepo.FundTransactionExistsInTx(ctx, tx, m.sourceType, m.sourceID, *m.correlationID)
	if err != nil {
		return false, fmt.Errorf("failed to check for an earlier %s record: %w", m.sourceType, err)
	}
	if exists {
		s.LogDebug(ctx, "Fund movement already recorded", slog.String("source_type", m.sourceType), slog.String("source_id", m.sourceID), slog.String("correlation_id", *m.correlationID))
	}
	return exists, nil
}

// applyMovementInTx locks the fund, applies the signed amount and appends the audit record.
func (s *ledgerService) applyMovementInTx(ctx context.Context, tx pgx.Tx, m fundMovement) (*domain.FundTransaction, error) {
	if !domain.IsMoneyScale(m.amount) {
		return nil, fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, m.amount, domain.MoneyScale)
	}
	locked, err := s.fundRepo.LockFundBalancesInTx(ctx, tx, []domain.FundType{m.fundType})
	if err != nil {
		return nil, err
	}
	balance := locked[m.fundType]

	now := s.now()
	balance.CurrentBalance = balance.CurrentBalance.Add(m.amount)
	balance.UpdatedAt = now
	if err := s.fundRepo.UpdateFundBalanceInTx(ctx, tx, balance); err != nil {
		return nil, err
	}

	sourceType, sourceID := m.sourceType, m.sourceID
	record := domain.FundTransaction{
		FundTransactionID: uuid.NewString(),
		FundType:          m.fundType,
		TransactionType:   domain.Adjustment,
		Amount:            m.amount,
		BalanceAfter:      balance.CurrentBalance,
		Description:       m.description,
		SourceType:        &sourceType,
		SourceID:          &sourceID,
		CorrelationID:     m.correlationID,
		CreatedByID:       m.userID,
		CreatedAt:         now,
	}
	if err := s.fundRepo.InsertFundTransactionInTx(ctx, tx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *ledgerService) ReverseExpenseImpact(ctx context.Context, expense domain.Expense, userID string) (*domain.FundTransaction, error) {
	var record *domain.FundTransaction
	err := s.RunInTx(ctx, s.fundRepo, func(tx pgx.Tx) error {
		var err error
		record, err = s.ReverseExpenseImpactInTx(ctx, tx, expense, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if record != nil {
		s.NotifyBalancesChanged(ctx)
	}
	return record, nil
}

func (s *ledgerService) ReverseExpenseImpactInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense, userID string) (*domain.FundTransaction, error) {
	if !expense.AffectsFund() {
		return nil, nil
	}
	m := fundMovement{
		fundType:      *expense.FundType,
		amount:        expense.Amount,
		sourceType:    domain.SourceExpenseArchive,
		sourceID:      expense.ExpenseID,
		correlationID: expense.DeletionBatchID,
		description:   "Reversal of archived expense: " + expense.Description,
		userID:        userID,
	}
	if done, err := s.alreadyApplied(ctx, tx, m); err != nil || done {
		return nil, err
	}

	record, err := s.applyMovementInTx(ctx, tx, m)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.GetLogger(ctx).Warn("Fund balance missing, expense reversal skipped", slog.String("expense_id", expense.ExpenseID), slog.String("fund_type", string(m.fundType)))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reverse expense %s: %w", expense.ExpenseID, err)
	}
	return record, nil
}

func (s *ledgerService) ApplyExpenseImpact(ctx context.Context, expense domain.Expense, sourceType string, correlationID *string, userID string) (*domain.FundTransaction, error) {
	var record *domain.FundTransaction
	err := s.RunInTx(ctx, s.fundRepo, func(tx pgx.Tx) error {
		var err error
		record, err = s.ApplyExpenseImpactInTx(ctx, tx, expense, sourceType, correlationID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if record != nil {
		s.NotifyBalancesChanged(ctx)
	}
	return record, nil
}

func (s *ledgerService) ApplyExpenseImpactInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense, sourceType string, correlationID *string, userID string) (*domain.FundTransaction, error) {
	if !expense.AffectsFund() {
		return nil, nil
	}
	m := fundMovement{
		fundType:      *expense.FundType,
		amount:        expense.Amount.Neg(),
		sourceType:    sourceType,
		sourceID:      expense.ExpenseID,
		correlationID: correlationID,
		description:   "Expense: " + expense.Description,
		userID:        userID,
	}
	if done, err := s.alreadyApplied(ctx, tx, m); err != nil || done {
		return nil, err
	}

	record, err := s.applyMovementInTx(ctx, tx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to debit fund for expense %s: %w", expense.ExpenseID, err)
	}
	return record, nil
}

func (s *ledgerService) AdjustFundForExpenseEdit(ctx context.Context, expense domain.Expense, delta decimal.Decimal, correlationID string, userID string) (*domain.FundTransaction, error) {
	var record *domain.FundTransaction
	err := s.RunInTx(ctx, s.fundRepo, func(tx pgx.Tx) error {
		var err error
		record, err = s.AdjustFundForExpenseEditInTx(ctx, tx, expense, delta, correlationID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if record != nil {
		s.NotifyBalancesChanged(ctx)
	}
	return record, nil
}

func (s *ledgerService) AdjustFundForExpenseEditInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense, delta decimal.Decimal, correlationID string, userID string) (*domain.FundTransaction, error) {
	if expense.FundType == nil || !expense.FundType.IsValid() || delta.IsZero() {
		return nil, nil
	}
	m := fundMovement{
		fundType:    *expense.FundType,
		amount:      delta,
		sourceType:  domain.SourceExpenseEdit,
		sourceID:    expense.ExpenseID,
		description: "Expense amount edited: " + expense.Description,
		userID:      userID,
	}
	if correlationID != "" {
		m.correlationID = &correlationID
	}
	if done, err := s.alreadyApplied(ctx, tx, m); err != nil || done {
		return nil, err
	}

	record, err := s.applyMovementInTx(ctx, tx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust fund for edited expense %s: %w", expense.ExpenseID, err)
	}
	return record, nil
}

func (s *ledgerService) RecalculateCapitalCost(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	var capitalCost decimal.Decimal
	err := s.RunInTx(ctx, s.transactionRepo, func(tx pgx.Tx) error {
		var err error
		capitalCost, err = s.RecalculateCapitalCostInTx(ctx, tx, transactionID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return capitalCost, nil
}

func (s *ledgerService) RecalculateCapitalCostInTx(ctx context.Context, tx pgx.Tx, transactionID string) (decimal.Decimal, error) {
	capitalCost, err := s.transactionRepo.RecalculateCapitalCostInTx(ctx, tx, transactionID, s.now())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recalculate capital cost of transaction %s: %w", transactionID, err)
	}
	s.LogDebug(ctx, "Capital cost recalculated", slog.String("transaction_id", transactionID), slog.String("capital_cost", capitalCost.String()))
	return capitalCost, nil
}

func (s *ledgerService) ApplyExpenseAmountDelta(ctx context.Context, companyFinanceID string, delta decimal.Decimal) (*domain.CompanyFinance, error) {
	var finance *domain.CompanyFinance
	err := s.RunInTx(ctx, s.fundRepo, func(tx pgx.Tx) error {
		var err error
		finance, err = s.ApplyExpenseAmountDeltaInTx(ctx, tx, companyFinanceID, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return finance, nil
}

func (s *ledgerService) ApplyExpenseAmountDeltaInTx(ctx context.Context, tx pgx.Tx, companyFinanceID string, delta decimal.Decimal) (*domain.CompanyFinance, error) {
	if !domain.IsMoneyScale(delta) {
		return nil, fmt.Errorf("%w: delta %s has more than %d decimal places", apperrors.ErrValidation, delta, domain.MoneyScale)
	}
	finance, err := s.financeRepo.AdjustTotalFundsInTx(ctx, tx, companyFinanceID, delta, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to apply expense amount delta: %w", err)
	}
	s.LogDebug(ctx, "Company total funds adjusted", slog.String("delta", delta.String()), slog.String("total_funds", finance.TotalFunds.String()))
	return finance, nil
}

func (s *ledgerService) ListFundTransactions(ctx context.Context, params dto.ListFundTransactionsParams) ([]domain.FundTransaction, *string, error) {
	if params.FundType != nil && !params.FundType.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown fund type %q", apperrors.ErrNotFound, *params.FundType)
	}
	limit := params.Limit
	if limit <= 0 || limit > maxFundTransactionPageSize {
		limit = 20
	}
	filter := portsrepo.FundTransactionFilter{
		FundType:   params.FundType,
		SourceType: params.SourceType,
		SourceID:   params.SourceID,
	}
	records, nextToken, err := s.fundRepo.ListFundTransactions(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list fund transactions")
		return nil, nil, err
	}
	return records, nextToken, nil
}

func (s *ledgerService) GetTransferPair(ctx context.Context, fundTransactionID string) (*domain.TransferPair, error) {
	leg, err := s.fundRepo.FindFundTransactionByID(ctx, fundTransactionID)
	if err != nil {
		return nil, err
	}
	if leg.TransactionType != domain.TransferOut && leg.TransactionType != domain.TransferIn {
		return nil, fmt.Errorf("%w: fund transaction %s is not a transfer leg", apperrors.ErrValidation, fundTransactionID)
	}
	if leg.ReferenceID == nil {
		return nil, fmt.Errorf("%w: transfer leg %s has no counterpart", apperrors.ErrInternal, fundTransactionID)
	}
	other, err := s.fundRepo.FindFundTransactionByID(ctx, *leg.ReferenceID)
	if err != nil {
		return nil, err
	}

	pair := domain.TransferPair{Out: *leg, In: *other}
	if leg.TransactionType == domain.TransferIn {
		pair = domain.TransferPair{Out: *other, In: *leg}
	}
	if !pair.IsLinked() {
		s.GetLogger(ctx).Error("Transfer legs are inconsistent", slog.String("out_id", pair.Out.FundTransactionID), slog.String("in_id", pair.In.FundTransactionID))
		return nil, fmt.Errorf("%w: transfer legs %s and %s are not linked", apperrors.ErrInternal, pair.Out.FundTransactionID, pair.In.FundTransactionID)
	}
	return &pair, nil
}

func (s *ledgerService) VerifyFundIntegrity(ctx context.Context, fundType domain.FundType) (*domain.FundIntegrity, error) {
	if !fundType.IsValid() {
		return nil, fmt.Errorf("%w: unknown fund type %q", apperrors.ErrNotFound, fundType)
	}
	balance, err := s.fundRepo.FindFundBalance(ctx, fundType)
	if err != nil {
		return nil, err
	}

	// Reconciliation resets the baseline, so only records after it count.
	baseline := decimal.Zero
	if balance.LastReconciledAt != nil {
		baseline = balance.LastReconciledBalance
	}
	sum, count, err := s.fundRepo.SumFundTransactionsAfter(ctx, fundType, balance.LastReconciledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sum fund transactions: %w", err)
	}

	expected := baseline.Add(sum)
	result := &domain.FundIntegrity{
		FundType:        fundType,
		CurrentBalance:  balance.CurrentBalance,
		ExpectedBalance: expected,
		Drift:           balance.CurrentBalance.Sub(expected),
		RecordsChecked:  count,
	}
	if !result.Consistent() {
		s.GetLogger(ctx).Warn("Fund balance drift detected", slog.String("fund_type", string(fundType)), slog.String("drift", result.Drift.String()))
	}
	return result, nil
}
