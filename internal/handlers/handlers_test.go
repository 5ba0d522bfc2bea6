package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/apperrors"
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/SscSPs/backoffice_ledger/internal/handlers"
	"github.com/SscSPs/backoffice_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock services ---

type MockLedgerService struct {
	portssvc.LedgerSvcFacade
	mock.Mock
}

func (m *MockLedgerService) GetFundBalances(ctx context.Context) ([]domain.FundBalance, error) {
	args := m.Called(ctx)
	balances, _ := args.Get(0).([]domain.FundBalance)
	return balances, args.Error(1)
}

func (m *MockLedgerService) Reconcile(ctx context.Context, fundType domain.FundType, actualBalance decimal.Decimal, description string, userID string) (*domain.FundBalance, *domain.FundTransaction, error) {
	args := m.Called(ctx, fundType, actualBalance, description, userID)
	balance, _ := args.Get(0).(*domain.FundBalance)
	record, _ := args.Get(1).(*domain.FundTransaction)
	return balance, record, args.Error(2)
}

func (m *MockLedgerService) Transfer(ctx context.Context, from domain.FundType, to domain.FundType, amount decimal.Decimal, description string, userID string) (*domain.TransferPair, error) {
	args := m.Called(ctx, from, to, amount, description, userID)
	pair, _ := args.Get(0).(*domain.TransferPair)
	return pair, args.Error(1)
}

func (m *MockLedgerService) ListFundTransactions(ctx context.Context, params dto.ListFundTransactionsParams) ([]domain.FundTransaction, *string, error) {
	args := m.Called(ctx, params)
	records, _ := args.Get(0).([]domain.FundTransaction)
	next, _ := args.Get(1).(*string)
	return records, next, args.Error(2)
}

func (m *MockLedgerService) VerifyFundIntegrity(ctx context.Context, fundType domain.FundType) (*domain.FundIntegrity, error) {
	args := m.Called(ctx, fundType)
	report, _ := args.Get(0).(*domain.FundIntegrity)
	return report, args.Error(1)
}

type MockExpenseService struct {
	portssvc.ExpenseSvcFacade
	mock.Mock
}

func (m *MockExpenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error) {
	args := m.Called(ctx, req, userID)
	expense, _ := args.Get(0).(*domain.Expense)
	return expense, args.Error(1)
}

func (m *MockExpenseService) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	expense, _ := args.Get(0).(*domain.Expense)
	return expense, args.Error(1)
}

func (m *MockExpenseService) ArchiveExpense(ctx context.Context, expenseID string, userID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID, userID)
	expense, _ := args.Get(0).(*domain.Expense)
	return expense, args.Error(1)
}

type MockTransactionService struct {
	portssvc.TransactionSvcFacade
	mock.Mock
}

func (m *MockTransactionService) RecalculateCapitalCost(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionService) RestoreTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	txn, _ := args.Get(0).(*domain.Transaction)
	return txn, args.Error(1)
}

// --- Test Suite ---

const (
	testIssuer    = "ledger-test"
	serviceUserID = "svc-billing"
	serviceAPIKey = "billing-key"
)

type HandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	ledger       *MockLedgerService
	expenses     *MockExpenseService
	transactions *MockTransactionService
	jwtSecret    string
	userID       string
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(serviceAPIKey), bcrypt.MinCost)
	suite.Require().NoError(err)

	cfg := &config.Config{
		IsProduction: true,
		JWTSecret:    suite.jwtSecret,
		JWTIssuer:    testIssuer,
		APIKeyHashes: serviceUserID + ":" + string(hash),
		RateLimit:    "1000-M",
	}

	suite.ledger = new(MockLedgerService)
	suite.expenses = new(MockExpenseService)
	suite.transactions = new(MockTransactionService)

	suite.router = gin.New()
	err = handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Ledger:      suite.ledger,
		Expense:     suite.expenses,
		Transaction: suite.transactions,
	})
	suite.Require().NoError(err)
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.ledger.AssertExpectations(suite.T())
	suite.expenses.AssertExpectations(suite.T())
	suite.transactions.AssertExpectations(suite.T())
}

// generateTestToken creates a signed JWT for the suite's user.
func (suite *HandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) do(method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, url, nil)
	} else {
		req, _ = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body["code"]
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestMissingTokenIsRejected() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/funds", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("unauthorized", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestListFundBalances() {
	suite.ledger.On("GetFundBalances", mock.Anything).Return([]domain.FundBalance{
		{FundType: domain.PettyCash, CurrentBalance: decimal.NewFromInt(700)},
		{FundType: domain.ProfitBank, CurrentBalance: decimal.NewFromInt(800)},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/funds", "")

	suite.Equal(http.StatusOK, w.Code)
	var got []dto.FundBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Require().Len(got, 2)
	suite.True(got[0].CurrentBalance.Equal(decimal.NewFromInt(700)))
}

func (suite *HandlerTestSuite) TestReconcile_PassesCaller() {
	now := time.Now().UTC()
	balance := &domain.FundBalance{FundType: domain.PettyCash, CurrentBalance: decimal.NewFromInt(500), LastReconciledBalance: decimal.NewFromInt(500), LastReconciledAt: &now}
	adjustment := &domain.FundTransaction{FundTransactionID: uuid.NewString(), FundType: domain.PettyCash, TransactionType: domain.Adjustment, Amount: decimal.NewFromInt(-200), BalanceAfter: decimal.NewFromInt(500)}

	suite.ledger.On("Reconcile", mock.Anything, domain.PettyCash,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(500)) }),
		"month end", suite.userID,
	).Return(balance, adjustment, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/funds/reconcile", `{"fundType":"petty_cash","actualBalance":"500","description":"month end"}`)

	suite.Equal(http.StatusOK, w.Code)
	var got dto.ReconcileFundResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.True(got.Adjustment.Amount.Equal(decimal.NewFromInt(-200)))
}

func (suite *HandlerTestSuite) TestReconcile_MissingBalanceIsRejected() {
	for _, body := range []string{
		`{"fundType":"petty_cash"}`,
		`{"fundType":"petty_cash","actualBalance":null}`,
	} {
		w := suite.do(http.MethodPost, "/api/v1/funds/reconcile", body)

		suite.Equal(http.StatusBadRequest, w.Code, body)
		suite.Equal("invalid_request", suite.errorCode(w))
	}
	suite.ledger.AssertNotCalled(suite.T(), "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestReconcile_ExplicitZeroBalanceIsAccepted() {
	balance := &domain.FundBalance{FundType: domain.ProfitBank, CurrentBalance: decimal.Zero}
	adjustment := &domain.FundTransaction{FundType: domain.ProfitBank, TransactionType: domain.Adjustment, Amount: decimal.NewFromInt(-75)}
	suite.ledger.On("Reconcile", mock.Anything, domain.ProfitBank,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.IsZero() }),
		"", suite.userID,
	).Return(balance, adjustment, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/funds/reconcile", `{"fundType":"profit_bank","actualBalance":"0"}`)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestReconcile_SubCentBalanceIsValidationError() {
	suite.ledger.On("Reconcile", mock.Anything, domain.PettyCash, mock.Anything, "", suite.userID).
		Return(nil, nil, fmt.Errorf("%w: balance 10.001 has more than 2 decimal places", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/funds/reconcile", `{"fundType":"petty_cash","actualBalance":"10.001"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validation", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestTransfer_SubCentAmountIsValidationError() {
	suite.ledger.On("Transfer", mock.Anything, domain.PettyCash, domain.ProfitBank,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("0.005")) }),
		"", suite.userID,
	).Return(nil, fmt.Errorf("%w: transfer amount 0.005 has more than 2 decimal places", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/funds/transfer", `{"fromFundType":"petty_cash","toFundType":"profit_bank","amount":"0.005"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validation", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestUnknownFundTypeFailsBinding() {
	w := suite.do(http.MethodPost, "/api/v1/funds/reconcile", `{"fundType":"vault","actualBalance":"10"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("invalid_request", suite.errorCode(w))
	suite.ledger.AssertNotCalled(suite.T(), "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestTransfer_SameFundFailsBinding() {
	w := suite.do(http.MethodPost, "/api/v1/funds/transfer", `{"fromFundType":"petty_cash","toFundType":"petty_cash","amount":"10"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.ledger.AssertNotCalled(suite.T(), "Transfer")
}

func (suite *HandlerTestSuite) TestTransfer_UnknownFundFailsBinding() {
	w := suite.do(http.MethodPost, "/api/v1/funds/transfer", `{"fromFundType":"vault","toFundType":"petty_cash","amount":"10"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestTransfer_InsufficientFunds() {
	suite.ledger.On("Transfer", mock.Anything, domain.PettyCash, domain.ProfitBank, mock.Anything, "", suite.userID).
		Return(nil, fmt.Errorf("%w: petty_cash holds 5", apperrors.ErrInsufficientFunds)).Once()

	w := suite.do(http.MethodPost, "/api/v1/funds/transfer", `{"fromFundType":"petty_cash","toFundType":"profit_bank","amount":"10"}`)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("insufficient_funds", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestListFundTransactions_BadToken() {
	suite.ledger.On("ListFundTransactions", mock.Anything, mock.MatchedBy(func(p dto.ListFundTransactionsParams) bool {
		return p.Limit == 20 && p.NextToken != nil && *p.NextToken == "garbage"
	})).Return(nil, nil, apperrors.NewAppError(http.StatusBadRequest, "invalid nextToken", fmt.Errorf("bad base64"))).Once()

	w := suite.do(http.MethodGet, "/api/v1/funds/transactions?nextToken=garbage", "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("invalid_request", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestVerifyIntegrity_UnknownFund() {
	w := suite.do(http.MethodGet, "/api/v1/funds/vault/integrity", "")

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestVerifyIntegrity_ReportsDrift() {
	suite.ledger.On("VerifyFundIntegrity", mock.Anything, domain.ProfitBank).Return(&domain.FundIntegrity{
		FundType:        domain.ProfitBank,
		CurrentBalance:  decimal.NewFromInt(110),
		ExpectedBalance: decimal.NewFromInt(100),
		Drift:           decimal.NewFromInt(10),
		RecordsChecked:  3,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/funds/profit_bank/integrity", "")

	suite.Equal(http.StatusOK, w.Code)
	var got dto.FundIntegrityResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.False(got.Consistent)
	suite.Equal(3, got.RecordsChecked)
}

func (suite *HandlerTestSuite) TestCreateExpense() {
	fund := domain.PettyCash
	expense := &domain.Expense{ExpenseID: uuid.NewString(), Amount: decimal.NewFromInt(250), FundType: &fund, Description: "printer ink"}

	suite.expenses.On("CreateExpense", mock.Anything, mock.MatchedBy(func(req dto.CreateExpenseRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(250)) && req.FundType != nil && *req.FundType == domain.PettyCash
	}), suite.userID).Return(expense, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/expenses",
		`{"amount":"250","fundType":"petty_cash","description":"printer ink","expenseDate":"2026-03-01T00:00:00Z"}`)

	suite.Equal(http.StatusCreated, w.Code)
	var got dto.ExpenseResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(expense.ExpenseID, got.ExpenseID)
}

func (suite *HandlerTestSuite) TestGetExpense_NotFound() {
	suite.expenses.On("GetExpense", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/expenses/missing", "")

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("not_found", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestArchiveExpense_AlreadyArchived() {
	suite.expenses.On("ArchiveExpense", mock.Anything, "exp-1", suite.userID).
		Return(nil, fmt.Errorf("expense exp-1: %w", apperrors.ErrAlreadyArchived)).Once()

	w := suite.do(http.MethodDelete, "/api/v1/expenses/exp-1", "")

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("already_archived", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestRestoreTransaction_AlreadyActive() {
	suite.transactions.On("RestoreTransaction", mock.Anything, "txn-1", suite.userID).
		Return(nil, apperrors.ErrAlreadyActive).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/txn-1/restore", "")

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("already_active", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestRecalculateCapitalCost() {
	suite.transactions.On("RecalculateCapitalCost", mock.Anything, "txn-1").Return(decimal.NewFromInt(1500), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/txn-1/capital-cost/recalculate", "")

	suite.Equal(http.StatusOK, w.Code)
	var got dto.CapitalCostResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.True(got.CapitalCost.Equal(decimal.NewFromInt(1500)))
}

func (suite *HandlerTestSuite) TestUnexpectedErrorIsInternal() {
	suite.ledger.On("GetFundBalances", mock.Anything).Return(nil, fmt.Errorf("connection reset")).Once()

	w := suite.do(http.MethodGet, "/api/v1/funds", "")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("internal", suite.errorCode(w))
	suite.NotContains(w.Body.String(), "connection reset")
}

func (suite *HandlerTestSuite) TestAPIKeyAuthenticatesServiceCaller() {
	suite.ledger.On("Transfer", mock.Anything, domain.ProfitBank, domain.PettyCash, mock.Anything, "top up", serviceUserID).
		Return(&domain.TransferPair{}, nil).Once()

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/funds/transfer",
		strings.NewReader(`{"fromFundType":"profit_bank","toFundType":"petty_cash","amount":"100","description":"top up"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", serviceAPIKey)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	suite.NotEmpty(w.Header().Get("X-RateLimit-Limit"))
}
