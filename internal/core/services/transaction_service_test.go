package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/apperrors"
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/core/services"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	tx              *fakeTx
	mockFundRepo    *MockFundRepository
	mockExpenseRepo *MockExpenseRepository
	mockTxnRepo     *MockTransactionRepository
	mockFinanceRepo *MockCompanyFinanceRepository
	mockCompensator *MockCompensator
	service         portssvc.TransactionSvcFacade
	now             time.Time
	userID          string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.tx = newFakeTx()
	manager := &fakeTxManager{tx: suite.tx}
	suite.mockFundRepo = &MockFundRepository{fakeTxManager: manager}
	suite.mockExpenseRepo = &MockExpenseRepository{fakeTxManager: manager}
	suite.mockTxnRepo = &MockTransactionRepository{fakeTxManager: manager}
	suite.mockFinanceRepo = new(MockCompanyFinanceRepository)
	suite.mockCompensator = new(MockCompensator)
	suite.now = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	suite.userID = uuid.NewString()

	clock := func() time.Time { return suite.now }
	ledger := services.NewLedgerService(suite.mockFundRepo, suite.mockTxnRepo, suite.mockFinanceRepo, services.WithLedgerClock(clock))
	suite.service = services.NewTransactionService(
		suite.mockTxnRepo,
		suite.mockExpenseRepo,
		ledger,
		services.WithTransactionCompensator(suite.mockCompensator),
		services.WithTransactionClock(clock),
	)
}

func (suite *TransactionServiceTestSuite) TearDownTest() {
	suite.mockFundRepo.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockCompensator.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction() {
	clientID := "client-7"
	suite.mockTxnRepo.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Name == "Villa renovation" && t.CapitalCost.IsZero() && *t.ClientID == clientID
	})).Return(nil).Once()

	project, err := suite.service.CreateTransaction(context.Background(), dto.CreateTransactionRequest{Name: "  Villa renovation ", ClientID: &clientID}, suite.userID)

	suite.Require().NoError(err)
	suite.NotEmpty(project.TransactionID)
	suite.Equal(suite.userID, project.CreatedBy)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RequiresName() {
	_, err := suite.service.CreateTransaction(context.Background(), dto.CreateTransactionRequest{Name: "   "}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestArchiveTransaction_CascadesWithOneBatch() {
	ctx := context.Background()
	petty := domain.PettyCash
	project := &domain.Transaction{TransactionID: uuid.NewString(), CapitalCost: decimal.NewFromInt(300)}
	withFund := domain.Expense{ExpenseID: "e1", Amount: decimal.NewFromInt(200), FundType: &petty, TransactionID: &project.TransactionID}
	withoutFund := domain.Expense{ExpenseID: "e2", Amount: decimal.NewFromInt(100), TransactionID: &project.TransactionID}

	var batchID string
	suite.mockTxnRepo.On("FindTransactionByIDForUpdateInTx", mock.Anything, suite.tx, project.TransactionID).Return(project, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionSoftDeleteInTx", mock.Anything, suite.tx, mock.MatchedBy(func(t domain.Transaction) bool {
		if !t.IsDeleted || t.DeletionBatchID == nil {
			return false
		}
		batchID = *t.DeletionBatchID
		return true
	})).Return(nil).Once()
	suite.mockExpenseRepo.On("ListActiveExpensesByTransactionForUpdateInTx", mock.Anything, suite.tx, project.TransactionID).Return([]domain.Expense{withFund, withoutFund}, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpenseInTx", mock.Anything, suite.tx, mock.MatchedBy(func(e domain.Expense) bool {
		return e.IsDeleted && e.DeletionBatchID != nil && *e.DeletionBatchID == batchID
	})).Return(nil).Twice()
	suite.mockFundRepo.On("FundTransactionExistsInTx", mock.Anything, mock.Anything, domain.SourceExpenseArchive, "e1", mock.AnythingOfType("string")).Return(false, nil).Once()
	suite.mockFundRepo.On("LockFundBalancesInTx", mock.Anything, mock.Anything, []domain.FundType{domain.PettyCash}).Return(map[domain.FundType]domain.FundBalance{domain.PettyCash: fund(domain.PettyCash, 0)}, nil).Once()
	suite.mockFundRepo.On("UpdateFundBalanceInTx", mock.Anything, mock.Anything, balanceEq(domain.PettyCash, 200)).Return(nil).Once()
	suite.mockFundRepo.On("InsertFundTransactionInTx", mock.Anything, mock.Anything, recordEq(domain.PettyCash, domain.Adjustment, 200, domain.SourceExpenseArchive)).Return(nil).Once()
	suite.mockTxnRepo.On("RecalculateCapitalCostInTx", mock.Anything, suite.tx, project.TransactionID, suite.now).Return(decimal.Zero, nil).Once()

	archived, err := suite.service.ArchiveTransaction(ctx, project.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.True(archived.IsDeleted)
	suite.True(archived.CapitalCost.IsZero())
	// Both expenses get a savepoint; the one without a fund is a no-op inside it.
	suite.Len(suite.tx.savepoints, 2)
	suite.True(suite.tx.committed)
}

func (suite *TransactionServiceTestSuite) TestArchiveTransaction_AlreadyArchived() {
	project := &domain.Transaction{TransactionID: uuid.NewString()}
	project.Archive(suite.userID, uuid.NewString(), suite.now)
	suite.mockTxnRepo.On("FindTransactionByIDForUpdateInTx", mock.Anything, suite.tx, project.TransactionID).Return(project, nil).Once()

	_, err := suite.service.ArchiveTransaction(context.Background(), project.TransactionID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrAlreadyArchived)
}

func (suite *TransactionServiceTestSuite) TestRestoreTransaction_RestoresOnlyItsBatch() {
	ctx := context.Background()
	petty := domain.PettyCash
	batchID := uuid.NewString()
	project := &domain.Transaction{TransactionID: uuid.NewString()}
	project.Archive(suite.userID, batchID, suite.now)
	cascaded := domain.Expense{ExpenseID: "e1", Amount: decimal.NewFromInt(200), FundType: &petty, TransactionID: &project.TransactionID}
	cascaded.Archive(suite.userID, batchID, suite.now)

	suite.mockTxnRepo.On("FindTransactionByIDForUpdateInTx", mock.Anything, suite.tx, project.TransactionID).Return(project, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionSoftDeleteInTx", mock.Anything, suite.tx, mock.MatchedBy(func(t domain.Transaction) bool { return !t.IsDeleted })).Return(nil).Once()
	// The repository selects by batch, so individually archived expenses never show up here.
	suite.mockExpenseRepo.On("ListExpensesByDeletionBatchForUpdateInTx", mock.Anything, suite.tx, project.TransactionID, batchID).Return([]domain.Expense{cascaded}, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpenseInTx", mock.Anything, suite.tx, mock.MatchedBy(func(e domain.Expense) bool { return e.ExpenseID == "e1" && !e.IsDeleted })).Return(nil).Once()
	suite.mockFundRepo.On("FundTransactionExistsInTx", mock.Anything, mock.Anything, domain.SourceExpenseRestore, "e1", batchID).Return(false, nil).Once()
	suite.mockFundRepo.On("LockFundBalancesInTx", mock.Anything, mock.Anything, []domain.FundType{domain.PettyCash}).Return(map[domain.FundType]domain.FundBalance{domain.PettyCash: fund(domain.PettyCash, 200)}, nil).Once()
	suite.mockFundRepo.On("UpdateFundBalanceInTx", mock.Anything, mock.Anything, balanceEq(domain.PettyCash, 0)).Return(nil).Once()
	suite.mockFundRepo.On("InsertFundTransactionInTx", mock.Anything, mock.Anything, recordEq(domain.PettyCash, domain.Adjustment, -200, domain.SourceExpenseRestore)).Return(nil).Once()
	suite.mockTxnRepo.On("RecalculateCapitalCostInTx", mock.Anything, mock.Anything, project.TransactionID, suite.now).Return(decimal.NewFromInt(200), nil).Once()

	restored, err := suite.service.RestoreTransaction(ctx, project.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.False(restored.IsDeleted)
	suite.True(restored.CapitalCost.Equal(decimal.NewFromInt(200)))
	suite.True(suite.tx.committed)
}

func (suite *TransactionServiceTestSuite) TestRestoreTransaction_RecalcFailureIsCompensated() {
	project := &domain.Transaction{TransactionID: uuid.NewString()}
	project.Archive(suite.userID, uuid.NewString(), suite.now)

	suite.mockTxnRepo.On("FindTransactionByIDForUpdateInTx", mock.Anything, suite.tx, project.TransactionID).Return(project, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionSoftDeleteInTx", mock.Anything, suite.tx, mock.Anything).Return(nil).Once()
	suite.mockExpenseRepo.On("ListExpensesByDeletionBatchForUpdateInTx", mock.Anything, suite.tx, project.TransactionID, mock.Anything).Return([]domain.Expense{}, nil).Once()
	suite.mockTxnRepo.On("RecalculateCapitalCostInTx", mock.Anything, mock.Anything, project.TransactionID, suite.now).Return(decimal.Zero, errors.New("statement timeout")).Once()
	suite.mockCompensator.On("EnqueueCompensation", mock.Anything, mock.MatchedBy(func(c domain.Compensation) bool {
		return c.Kind == domain.CompensateRecalcCapitalCost && c.TransactionID == project.TransactionID
	})).Return(nil).Once()

	restored, err := suite.service.RestoreTransaction(context.Background(), project.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.False(restored.IsDeleted)
	suite.True(suite.tx.committed)
}

func (suite *TransactionServiceTestSuite) TestRestoreTransaction_AlreadyActive() {
	project := &domain.Transaction{TransactionID: uuid.NewString()}
	suite.mockTxnRepo.On("FindTransactionByIDForUpdateInTx", mock.Anything, suite.tx, project.TransactionID).Return(project, nil).Once()

	_, err := suite.service.RestoreTransaction(context.Background(), project.TransactionID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrAlreadyActive)
}

func (suite *TransactionServiceTestSuite) TestRecalculateCapitalCost() {
	id := uuid.NewString()
	suite.mockTxnRepo.On("RecalculateCapitalCostInTx", mock.Anything, suite.tx, id, suite.now).Return(decimal.NewFromInt(42), nil).Once()

	cost, err := suite.service.RecalculateCapitalCost(context.Background(), id)

	suite.Require().NoError(err)
	suite.True(cost.Equal(decimal.NewFromInt(42)))
}

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
