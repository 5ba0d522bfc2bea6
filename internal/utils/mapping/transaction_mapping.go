package mapping

import (
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/models"
)

// ToModelTransaction converts a domain.Transaction to its row form
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:    d.TransactionID,
		Name:             d.Name,
		ClientID:         d.ClientID,
		VendorID:         d.VendorID,
		CapitalCost:      d.CapitalCost,
		SoftDeleteFields: ToModelSoftDeleteFields(d.SoftDeleteFields),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a transactions row to a domain.Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:    m.TransactionID,
		Name:             m.Name,
		ClientID:         m.ClientID,
		VendorID:         m.VendorID,
		CapitalCost:      m.CapitalCost,
		SoftDeleteFields: ToDomainSoftDeleteFields(m.SoftDeleteFields),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCompanyFinance converts the company_finances row to a domain.CompanyFinance
func ToDomainCompanyFinance(m models.CompanyFinance) domain.CompanyFinance {
	return domain.CompanyFinance{
		CompanyFinanceID: m.CompanyFinanceID,
		TotalFunds:       m.TotalFunds,
		UpdatedAt:        m.UpdatedAt,
	}
}
