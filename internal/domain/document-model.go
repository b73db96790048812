package domain

import "time"

type DocumentStatus string

const (
	DocumentPending              DocumentStatus = "PENDING"
	DocumentApproved             DocumentStatus = "APPROVED"
	DocumentRejected             DocumentStatus = "REJECTED"
	DocumentResubmissionRequired DocumentStatus = "RESUBMISSION_REQUIRED"
)

// Reviewable lists the statuses a reviewer may set.
func (s DocumentStatus) Reviewable() bool {
	return s == DocumentApproved || s == DocumentRejected || s == DocumentResubmissionRequired
}

// Failing statuses carry a rejection reason and fail the whole request.
func (s DocumentStatus) Failing() bool {
	return s == DocumentRejected || s == DocumentResubmissionRequired
}

type StudentDocument struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	RequirementID         uint           `gorm:"not null;index" json:"requirement_id"`
	VerificationRequestID uint           `gorm:"not null;index" json:"verification_request_id"`
	StudentID             uint           `gorm:"not null;index" json:"student_id"`
	ParentDocumentID      *uint          `gorm:"index" json:"parent_document_id,omitempty"`
	FileName              string         `gorm:"type:varchar(255);not null" json:"file_name"`
	OriginalName          string         `gorm:"type:varchar(255);not null" json:"original_name"`
	FileURL               string         `gorm:"type:text;not null" json:"file_url"`
	FileSize              int64          `gorm:"not null" json:"file_size"`
	MimeType              string         `gorm:"type:varchar(100)" json:"mime_type"`
	Status                DocumentStatus `gorm:"type:varchar(30);not null;default:'PENDING';index" json:"status"`
	ReviewNotes           *string        `gorm:"type:text" json:"review_notes,omitempty"`
	RejectionReason       *string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedByID          *uint          `json:"reviewed_by_id,omitempty"`
	ReviewedAt            *time.Time     `json:"reviewed_at,omitempty"`

	Requirement *DocumentRequirement `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
