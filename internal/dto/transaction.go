package dto

import (
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to open a project transaction.
type CreateTransactionRequest struct {
	Name     string  `json:"name" binding:"required,max=200"`
	ClientID *string `json:"clientID"`
	VendorID *string `json:"vendorID"`
}

// TransactionResponse mirrors domain.Transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	Name          string          `json:"name"`
	ClientID      *string         `json:"clientID,omitempty"`
	VendorID      *string         `json:"vendorID,omitempty"`
	CapitalCost   decimal.Decimal `json:"capitalCost"`
	IsDeleted     bool            `json:"isDeleted"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// CapitalCostResponse is returned by the recalculation endpoint.
type CapitalCostResponse struct {
	TransactionID string          `json:"transactionID"`
	CapitalCost   decimal.Decimal `json:"capitalCost"`
}

// ToTransactionResponse converts a domain.Transaction.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Name:          t.Name,
		ClientID:      t.ClientID,
		VendorID:      t.VendorID,
		CapitalCost:   t.CapitalCost,
		IsDeleted:     t.IsDeleted,
		DeletedAt:     t.DeletedAt,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		LastUpdatedAt: t.LastUpdatedAt,
		LastUpdatedBy: t.LastUpdatedBy,
	}
}
