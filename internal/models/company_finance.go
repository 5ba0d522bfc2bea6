package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyFinance is the singleton row of company_finances.
type CompanyFinance struct {
	CompanyFinanceID string          `db:"id"`
	TotalFunds       decimal.Decimal `db:"total_funds"`
	UpdatedAt        time.Time       `db:"updated_at"`
}
