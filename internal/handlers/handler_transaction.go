package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/SscSPs/backoffice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for project transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade, writeGuards ...gin.HandlerFunc) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.POST("", guarded(writeGuards, h.createTransaction)...)
		transactions.DELETE("/:transactionID", guarded(writeGuards, h.archiveTransaction)...)
		transactions.POST("/:transactionID/restore", guarded(writeGuards, h.restoreTransaction)...)
		transactions.POST("/:transactionID/capital-cost/recalculate", guarded(writeGuards, h.recalculateCapitalCost)...)
	}
}

// createTransaction godoc
// @Summary Create a project transaction
// @Description Opens a project that expenses can be linked to. Capital cost starts at zero.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a project transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// archiveTransaction godoc
// @Summary Archive a project transaction
// @Description Soft-deletes the project and every active expense linked to it as one batch, crediting their funds
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already archived"
// @Failure 500 {object} map[string]string "Failed to archive transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) archiveTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.ArchiveTransaction(c.Request.Context(), c.Param("transactionID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to archive transaction")
		return
	}

	logger.Info("Transaction archived", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// restoreTransaction godoc
// @Summary Restore a project transaction
// @Description Restores the project and only the expenses archived together with it
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already active"
// @Failure 500 {object} map[string]string "Failed to restore transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID}/restore [post]
func (h *transactionHandler) restoreTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.RestoreTransaction(c.Request.Context(), c.Param("transactionID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to restore transaction")
		return
	}

	logger.Info("Transaction restored", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// recalculateCapitalCost godoc
// @Summary Recalculate capital cost
// @Description Recomputes a project's capital cost as the sum of its active expenses
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.CapitalCostResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to recalculate capital cost"
// @Security BearerAuth
// @Router /transactions/{transactionID}/capital-cost/recalculate [post]
func (h *transactionHandler) recalculateCapitalCost(c *gin.Context) {
	transactionID := c.Param("transactionID")
	capitalCost, err := h.transactionService.RecalculateCapitalCost(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err, "Failed to recalculate capital cost")
		return
	}
	c.JSON(http.StatusOK, dto.CapitalCostResponse{TransactionID: transactionID, CapitalCost: capitalCost})
}
