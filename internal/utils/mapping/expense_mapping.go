package mapping

import (
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/models"
)

// ToModelExpense converts a domain.Expense to its row form
func ToModelExpense(d domain.Expense) models.Expense {
	var fundType *string
	if d.FundType != nil {
		ft := string(*d.FundType)
		fundType = &ft
	}
	return models.Expense{
		ExpenseID:        d.ExpenseID,
		Amount:           d.Amount,
		FundType:         fundType,
		Description:      d.Description,
		TransactionID:    d.TransactionID,
		InventoryID:      d.InventoryID,
		VendorID:         d.VendorID,
		ExpenseDate:      d.ExpenseDate,
		SoftDeleteFields: ToModelSoftDeleteFields(d.SoftDeleteFields),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts an expenses row to a domain.Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	var fundType *domain.FundType
	if m.FundType != nil {
		ft := domain.FundType(*m.FundType)
		fundType = &ft
	}
	return domain.Expense{
		ExpenseID:        m.ExpenseID,
		Amount:           m.Amount,
		FundType:         fundType,
		Description:      m.Description,
		TransactionID:    m.TransactionID,
		InventoryID:      m.InventoryID,
		VendorID:         m.VendorID,
		ExpenseDate:      m.ExpenseDate,
		SoftDeleteFields: ToDomainSoftDeleteFields(m.SoftDeleteFields),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainExpenseSlice converts expenses rows to domain values
func ToDomainExpenseSlice(ms []models.Expense) []domain.Expense {
	ds := make([]domain.Expense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpense(m)
	}
	return ds
}
