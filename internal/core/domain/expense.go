package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a cash outflow, optionally attributed to a project and paid from a fund.
type Expense struct {
	ExpenseID     string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	FundType      *FundType       `json:"fundType,omitempty"`
	Description   string          `json:"description"`
	TransactionID *string         `json:"transactionId,omitempty"`
	InventoryID   *string         `json:"inventoryId,omitempty"`
	VendorID      *string         `json:"vendorId,omitempty"`
	ExpenseDate   time.Time       `json:"expenseDate"`
	SoftDeleteFields
	AuditFields
}

// AffectsFund reports whether the expense moves money in a fund.
func (e Expense) AffectsFund() bool {
	return e.FundType != nil && e.FundType.IsValid() && e.Amount.IsPositive()
}
