package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/SscSPs/backoffice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fundHandler handles HTTP requests for fund balances and their audit trail.
type fundHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newFundHandler(ls portssvc.LedgerSvcFacade) *fundHandler {
	return &fundHandler{ledgerService: ls}
}

// registerFundRoutes registers the fund routes. Mutating routes go through writeGuards.
func registerFundRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, writeGuards ...gin.HandlerFunc) {
	h := newFundHandler(ledgerService)

	funds := rg.Group("/funds")
	{
		funds.GET("", h.listFundBalances)
		funds.GET("/transactions", h.listFundTransactions)
		funds.GET("/transactions/:fundTransactionID/pair", h.getTransferPair)
		funds.GET("/:fundType/integrity", h.verifyFundIntegrity)
		funds.POST("/reconcile", guarded(writeGuards, h.reconcileFund)...)
		funds.POST("/transfer", guarded(writeGuards, h.transferFunds)...)
	}
}

// listFundBalances godoc
// @Summary List fund balances
// @Description Returns the current balance of every fund
// @Tags funds
// @Produce  json
// @Success 200 {array} dto.FundBalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list fund balances"
// @Security BearerAuth
// @Router /funds [get]
func (h *fundHandler) listFundBalances(c *gin.Context) {
	balances, err := h.ledgerService.GetFundBalances(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to list fund balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFundBalanceResponse(balances))
}

// reconcileFund godoc
// @Summary Reconcile a fund
// @Description Sets a fund to an observed balance and records the difference as an adjustment
// @Tags funds
// @Accept  json
// @Produce  json
// @Param   reconcile body dto.ReconcileFundRequest true "Observed balance"
// @Success 200 {object} dto.ReconcileFundResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fund not found"
// @Failure 500 {object} map[string]string "Failed to reconcile fund"
// @Security BearerAuth
// @Router /funds/reconcile [post]
func (h *fundHandler) reconcileFund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReconcileFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	balance, adjustment, err := h.ledgerService.Reconcile(c.Request.Context(), req.FundType, *req.ActualBalance, req.Description, userID)
	if err != nil {
		respondWithError(c, err, "Failed to reconcile fund")
		return
	}

	logger.Info("Fund reconciled", slog.String("fund_type", string(balance.FundType)), slog.String("adjustment", adjustment.Amount.String()))
	c.JSON(http.StatusOK, dto.ReconcileFundResponse{
		Balance:    dto.ToFundBalanceResponse(balance),
		Adjustment: dto.ToFundTransactionResponse(adjustment),
	})
}

// transferFunds godoc
// @Summary Transfer between funds
// @Description Moves a positive amount from one fund to the other as a linked pair of audit records
// @Tags funds
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferFundsRequest true "Transfer details"
// @Success 201 {object} dto.TransferPairResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to transfer funds"
// @Security BearerAuth
// @Router /funds/transfer [post]
func (h *fundHandler) transferFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	pair, err := h.ledgerService.Transfer(c.Request.Context(), req.FromFundType, req.ToFundType, req.Amount, req.Description, userID)
	if err != nil {
		respondWithError(c, err, "Failed to transfer funds")
		return
	}

	logger.Info("Funds transferred",
		slog.String("from", string(req.FromFundType)),
		slog.String("to", string(req.ToFundType)),
		slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusCreated, dto.ToTransferPairResponse(pair))
}

// listFundTransactions godoc
// @Summary List fund transactions
// @Description Returns the fund audit trail newest first, paginated with nextToken
// @Tags funds
// @Produce  json
// @Param   fundType query string false "Fund type"
// @Param   sourceType query string false "Source type"
// @Param   sourceID query string false "Source ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListFundTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list fund transactions"
// @Security BearerAuth
// @Router /funds/transactions [get]
func (h *fundHandler) listFundTransactions(c *gin.Context) {
	var params dto.ListFundTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	records, nextToken, err := h.ledgerService.ListFundTransactions(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "Failed to list fund transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFundTransactionsResponse(records, nextToken))
}

// getTransferPair godoc
// @Summary Get a transfer pair
// @Description Returns both legs of the transfer the given audit record belongs to
// @Tags funds
// @Produce  json
// @Param   fundTransactionID path string true "Fund transaction ID"
// @Success 200 {object} dto.TransferPairResponse
// @Failure 400 {object} map[string]string "Not a transfer leg"
// @Failure 404 {object} map[string]string "Fund transaction not found"
// @Failure 500 {object} map[string]string "Failed to load transfer"
// @Security BearerAuth
// @Router /funds/transactions/{fundTransactionID}/pair [get]
func (h *fundHandler) getTransferPair(c *gin.Context) {
	pair, err := h.ledgerService.GetTransferPair(c.Request.Context(), c.Param("fundTransactionID"))
	if err != nil {
		respondWithError(c, err, "Failed to load transfer")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferPairResponse(pair))
}

// verifyFundIntegrity godoc
// @Summary Verify a fund's integrity
// @Description Compares a fund's balance with the balance implied by its audit trail since the last reconciliation
// @Tags funds
// @Produce  json
// @Param   fundType path string true "Fund type" Enums(petty_cash, profit_bank)
// @Success 200 {object} dto.FundIntegrityResponse
// @Failure 400 {object} map[string]string "Unknown fund type"
// @Failure 404 {object} map[string]string "Fund not found"
// @Failure 500 {object} map[string]string "Failed to verify fund"
// @Security BearerAuth
// @Router /funds/{fundType}/integrity [get]
func (h *fundHandler) verifyFundIntegrity(c *gin.Context) {
	fundType := domain.FundType(c.Param("fundType"))
	if !fundType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown fund type: " + string(fundType), "code": "validation"})
		return
	}

	report, err := h.ledgerService.VerifyFundIntegrity(c.Request.Context(), fundType)
	if err != nil {
		respondWithError(c, err, "Failed to verify fund")
		return
	}
	if !report.Consistent() {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Fund balance drifted from its trail",
			slog.String("fund_type", string(fundType)),
			slog.String("drift", report.Drift.String()))
	}
	c.JSON(http.StatusOK, dto.ToFundIntegrityResponse(report))
}
