package domain

import "github.com/shopspring/decimal"

// Transaction is a client project. CapitalCost is the denormalised sum of its active expenses.
type Transaction struct {
	TransactionID string          `json:"id"`
	Name          string          `json:"name"`
	ClientID      *string         `json:"clientId,omitempty"`
	VendorID      *string         `json:"vendorId,omitempty"`
	CapitalCost   decimal.Decimal `json:"capitalCost"`
	SoftDeleteFields
	AuditFields
}
