package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyFinance is the singleton row tracking the company's total funds.
type CompanyFinance struct {
	CompanyFinanceID string          `json:"id"`
	TotalFunds       decimal.Decimal `json:"totalFunds"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
