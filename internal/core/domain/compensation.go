package domain

import "github.com/shopspring/decimal"

// CompensationKind identifies a best-effort ledger effect that must be retried.
type CompensationKind string

const (
	CompensateReverseExpense    CompensationKind = "reverse_expense"
	CompensateApplyExpense      CompensationKind = "apply_expense"
	CompensateFinanceDelta      CompensationKind = "finance_delta"
	CompensateRecalcCapitalCost CompensationKind = "recalc_capital_cost"
	CompensateFundEditDelta     CompensationKind = "fund_edit_delta"
)

// Compensation describes a secondary ledger effect that failed after its primary mutation committed.
// Only the fields relevant to Kind are set. For expense reversals and re-debits Delta holds the
// expense amount at the time of the event, since the row may have changed before the retry runs.
type Compensation struct {
	Kind             CompensationKind `json:"kind"`
	ExpenseID        string           `json:"expenseId,omitempty"`
	TransactionID    string           `json:"transactionId,omitempty"`
	CompanyFinanceID string           `json:"companyFinanceId,omitempty"`
	Delta            decimal.Decimal  `json:"delta"`
	CorrelationID    string           `json:"correlationId,omitempty"`
	UserID           string           `json:"userId"`
	Reason           string           `json:"reason,omitempty"`
}
