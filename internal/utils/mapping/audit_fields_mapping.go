package mapping

import (
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/models"
)

// ToModelAuditFields converts a domain AuditFields to a model AuditFields
func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

// ToDomainAuditFields converts a model AuditFields to a domain AuditFields
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}

// ToModelSoftDeleteFields converts domain archive fields to their column form
func ToModelSoftDeleteFields(d domain.SoftDeleteFields) models.SoftDeleteFields {
	return models.SoftDeleteFields{
		IsDeleted:       d.IsDeleted,
		DeletedAt:       d.DeletedAt,
		DeletedByID:     d.DeletedByID,
		DeletionBatchID: d.DeletionBatchID,
	}
}

// ToDomainSoftDeleteFields converts archive columns to their domain form
func ToDomainSoftDeleteFields(m models.SoftDeleteFields) domain.SoftDeleteFields {
	return domain.SoftDeleteFields{
		IsDeleted:       m.IsDeleted,
		DeletedAt:       m.DeletedAt,
		DeletedByID:     m.DeletedByID,
		DeletionBatchID: m.DeletionBatchID,
	}
}
