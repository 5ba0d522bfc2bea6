package models

import "github.com/shopspring/decimal"

// Transaction is a row of transactions (client projects).
type Transaction struct {
	TransactionID string          `db:"id"`
	Name          string          `db:"name"`
	ClientID      *string         `db:"client_id"`
	VendorID      *string         `db:"vendor_id"`
	CapitalCost   decimal.Decimal `db:"capital_cost"`
	SoftDeleteFields
	AuditFields
}
