package services_test

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Fake transaction ---

// fakeTx records commits, rollbacks and savepoints. Queries are never issued against it
// because every repository is mocked.
type fakeTx struct {
	pgx.Tx
	name       string
	committed  bool
	rolledBack bool
	savepoints []*fakeTx
}

func newFakeTx() *fakeTx {
	return &fakeTx{name: "tx"}
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) {
	sp := &fakeTx{name: fmt.Sprintf("%s/sp%d", t.name, len(t.savepoints)+1)}
	t.savepoints = append(t.savepoints, sp)
	return sp, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

// fakeTxManager hands out the same fakeTx for every Begin.
type fakeTxManager struct {
	tx *fakeTx
}

func (m *fakeTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, nil
}

func (m *fakeTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (m *fakeTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

// --- Matchers ---

func decEq(v int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(v)) })
}

func balanceEq(fundType domain.FundType, v int64) interface{} {
	return mock.MatchedBy(func(b domain.FundBalance) bool {
		return b.FundType == fundType && b.CurrentBalance.Equal(decimal.NewFromInt(v))
	})
}

func recordEq(fundType domain.FundType, txType domain.FundTransactionType, amount int64, sourceType string) interface{} {
	return mock.MatchedBy(func(r domain.FundTransaction) bool {
		return r.FundType == fundType &&
			r.TransactionType == txType &&
			r.Amount.Equal(decimal.NewFromInt(amount)) &&
			r.SourceType != nil && *r.SourceType == sourceType
	})
}

// --- Mock FundRepository ---
type MockFundRepository struct {
	mock.Mock
	*fakeTxManager
}

var _ portsrepo.FundRepositoryWithTx = (*MockFundRepository)(nil)

func (m *MockFundRepository) ListFundBalances(ctx context.Context) ([]domain.FundBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundBalance), args.Error(1)
}

func (m *MockFundRepository) FindFundBalance(ctx context.Context, fundType domain.FundType) (*domain.FundBalance, error) {
	args := m.Called(ctx, fundType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundBalance), args.Error(1)
}

func (m *MockFundRepository) FindFundTransactionByID(ctx context.Context, fundTransactionID string) (*domain.FundTransaction, error) {
	args := m.Called(ctx, fundTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundTransaction), args.Error(1)
}

func (m *MockFundRepository) ListFundTransactions(ctx context.Context, filter portsrepo.FundTransactionFilter, limit int, nextToken *string) ([]domain.FundTransaction, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.FundTransaction), returnedNextToken, args.Error(2)
}

func (m *MockFundRepository) SumFundTransactionsAfter(ctx context.Context, fundType domain.FundType, after *time.Time) (decimal.Decimal, int, error) {
	args := m.Called(ctx, fundType, after)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

func (m *MockFundRepository) SeedFundBalances(ctx context.Context, fundTypes []domain.FundType, now time.Time) error {
	args := m.Called(ctx, fundTypes, now)
	return args.Error(0)
}

func (m *MockFundRepository) LockFundBalancesInTx(ctx context.Context, tx pgx.Tx, fundTypes []domain.FundType) (map[domain.FundType]domain.FundBalance, error) {
	args := m.Called(ctx, tx, fundTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.FundType]domain.FundBalance), args.Error(1)
}

func (m *MockFundRepository) UpdateFundBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.FundBalance) error {
	args := m.Called(ctx, tx, balance)
	return args.Error(0)
}

func (m *MockFundRepository) InsertFundTransactionInTx(ctx context.Context, tx pgx.Tx, record domain.FundTransaction) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockFundRepository) SetFundTransactionReferenceInTx(ctx context.Context, tx pgx.Tx, fundTransactionID string, referenceID string) error {
	args := m.Called(ctx, tx, fundTransactionID, referenceID)
	return args.Error(0)
}

func (m *MockFundRepository) FundTransactionExistsInTx(ctx context.Context, tx pgx.Tx, sourceType string, sourceID string, correlationID string) (bool, error) {
	args := m.Called(ctx, tx, sourceType, sourceID, correlationID)
	return args.Bool(0), args.Error(1)
}

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
	*fakeTxManager
}

var _ portsrepo.ExpenseRepositoryWithTx = (*MockExpenseRepository)(nil)

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, filter portsrepo.ExpenseFilter, limit int, offset int) ([]domain.Expense, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindExpenseByIDForUpdateInTx(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, tx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) SaveExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	args := m.Called(ctx, tx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	args := m.Called(ctx, tx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) ListActiveExpensesByTransactionForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.Expense, error) {
	args := m.Called(ctx, tx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpensesByDeletionBatchForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string, batchID string) ([]domain.Expense, error) {
	args := m.Called(ctx, tx, transactionID, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
	*fakeTxManager
}

var _ portsrepo.TransactionRepositoryWithTx = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, transaction domain.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByIDForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransactionSoftDeleteInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	args := m.Called(ctx, tx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) RecalculateCapitalCostInTx(ctx context.Context, tx pgx.Tx, transactionID string, now time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, transactionID, now)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock CompanyFinanceRepository ---
type MockCompanyFinanceRepository struct {
	mock.Mock
}

var _ portsrepo.CompanyFinanceRepositoryFacade = (*MockCompanyFinanceRepository)(nil)

func (m *MockCompanyFinanceRepository) FindCompanyFinance(ctx context.Context) (*domain.CompanyFinance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyFinance), args.Error(1)
}

func (m *MockCompanyFinanceRepository) AdjustTotalFundsInTx(ctx context.Context, tx pgx.Tx, companyFinanceID string, delta decimal.Decimal, now time.Time) (*domain.CompanyFinance, error) {
	args := m.Called(ctx, tx, companyFinanceID, delta, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyFinance), args.Error(1)
}

// --- Mock Compensator ---
type MockCompensator struct {
	mock.Mock
}

var _ portssvc.CompensationEnqueuer = (*MockCompensator)(nil)

func (m *MockCompensator) EnqueueCompensation(ctx context.Context, compensation domain.Compensation) error {
	args := m.Called(ctx, compensation)
	return args.Error(0)
}

// --- Mock BalanceCache ---
type MockBalanceCache struct {
	mock.Mock
}

var _ portssvc.BalanceCache = (*MockBalanceCache)(nil)

func (m *MockBalanceCache) FetchBalances(ctx context.Context, load func(context.Context) ([]domain.FundBalance, error)) ([]domain.FundBalance, error) {
	args := m.Called(ctx, load)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundBalance), args.Error(1)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
