package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a row of expenses.
type Expense struct {
	ExpenseID     string          `db:"id"`
	Amount        decimal.Decimal `db:"amount"`
	FundType      *string         `db:"fund_type"`
	Description   string          `db:"description"`
	TransactionID *string         `db:"transaction_id"`
	InventoryID   *string         `db:"inventory_id"`
	VendorID      *string         `db:"vendor_id"`
	ExpenseDate   time.Time       `db:"expense_date"`
	SoftDeleteFields
	AuditFields
}
