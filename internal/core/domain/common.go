package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// SoftDeleteFields marks a row as archived without removing it.
// DeletionBatchID groups rows archived by the same action so they can be restored together.
type SoftDeleteFields struct {
	IsDeleted       bool       `json:"isDeleted"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
	DeletedByID     *string    `json:"deletedById,omitempty"`
	DeletionBatchID *string    `json:"deletionBatchId,omitempty"`
}

// Archive stamps the soft-delete fields.
func (s *SoftDeleteFields) Archive(userID, batchID string, at time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &at
	s.DeletedByID = &userID
	s.DeletionBatchID = &batchID
}

// Unarchive clears the soft-delete fields.
func (s *SoftDeleteFields) Unarchive() {
	s.IsDeleted = false
	s.DeletedAt = nil
	s.DeletedByID = nil
	s.DeletionBatchID = nil
}
