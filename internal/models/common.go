package models

import "time"

// AuditFields holds the audit columns shared by mutable tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

// SoftDeleteFields holds the archive columns.
type SoftDeleteFields struct {
	IsDeleted       bool       `db:"is_deleted"`
	DeletedAt       *time.Time `db:"deleted_at"`
	DeletedByID     *string    `db:"deleted_by_id"`
	DeletionBatchID *string    `db:"deletion_batch_id"`
}
