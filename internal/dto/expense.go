package dto

import (
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest defines the data needed to record an expense.
type CreateExpenseRequest struct {
	Amount        decimal.Decimal  `json:"amount"`
	FundType      *domain.FundType `json:"fundType" binding:"omitempty,fundtype"`
	Description   string           `json:"description" binding:"required,max=500"`
	TransactionID *string          `json:"transactionID" binding:"omitempty,uuid"`
	InventoryID   *string          `json:"inventoryID"`
	VendorID      *string          `json:"vendorID"`
	ExpenseDate   time.Time        `json:"expenseDate" binding:"required"`
}

// UpdateExpenseRequest defines the editable fields of an active expense.
// Pointers distinguish "not provided" from zero values.
type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	TransactionID   *string          `form:"transactionID"`
	FundType        *domain.FundType `form:"fundType" binding:"omitempty,fundtype"`
	IncludeArchived bool             `form:"includeArchived"`
	Limit           int              `form:"limit,default=20" binding:"min=1,max=100"`
	Offset          int              `form:"offset,default=0" binding:"min=0"`
}

// ExpenseResponse mirrors domain.Expense.
type ExpenseResponse struct {
	ExpenseID     string           `json:"expenseID"`
	Amount        decimal.Decimal  `json:"amount"`
	FundType      *domain.FundType `json:"fundType,omitempty"`
	Description   string           `json:"description"`
	TransactionID *string          `json:"transactionID,omitempty"`
	InventoryID   *string          `json:"inventoryID,omitempty"`
	VendorID      *string          `json:"vendorID,omitempty"`
	ExpenseDate   time.Time        `json:"expenseDate"`
	IsDeleted     bool             `json:"isDeleted"`
	DeletedAt     *time.Time       `json:"deletedAt,omitempty"`
	DeletedByID   *string          `json:"deletedByID,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	CreatedBy     string           `json:"createdBy"`
	LastUpdatedAt time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy string           `json:"lastUpdatedBy"`
}

// ToExpenseResponse converts a domain.Expense.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:     e.ExpenseID,
		Amount:        e.Amount,
		FundType:      e.FundType,
		Description:   e.Description,
		TransactionID: e.TransactionID,
		InventoryID:   e.InventoryID,
		VendorID:      e.VendorID,
		ExpenseDate:   e.ExpenseDate,
		IsDeleted:     e.IsDeleted,
		DeletedAt:     e.DeletedAt,
		DeletedByID:   e.DeletedByID,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		LastUpdatedAt: e.LastUpdatedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
}

// ToListExpenseResponse converts a slice of domain.Expense.
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	res := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		res[i] = ToExpenseResponse(&expenses[i])
	}
	return res
}
