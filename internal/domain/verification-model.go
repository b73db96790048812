package domain

import "time"

type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "PENDING"
	VerificationInReview  VerificationStatus = "IN_REVIEW"
	VerificationCompleted VerificationStatus = "COMPLETED"
	VerificationRejected  VerificationStatus = "REJECTED"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationInReview, VerificationCompleted, VerificationRejected:
		return true
	}
	return false
}

// Terminal statuses are stamped with the reviewer on a direct override.
func (s VerificationStatus) Terminal() bool {
	return s == VerificationCompleted || s == VerificationRejected
}

// At most one unfinished request may exist per student and country.
type VerificationRequest struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	StudentID    uint               `gorm:"not null;index;uniqueIndex:uidx_verification_open,where:status <> 'COMPLETED'" json:"student_id"`
	CountryID    uint               `gorm:"not null;index;uniqueIndex:uidx_verification_open,where:status <> 'COMPLETED'" json:"country_id"`
	Status       VerificationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	AssignedToID *uint              `gorm:"index" json:"assigned_to_id,omitempty"`
	ReviewNotes  *string            `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedByID *uint              `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time         `json:"reviewed_at,omitempty"`

	Student   *Student          `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Country   *Country          `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Documents []StudentDocument `gorm:"foreignKey:VerificationRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"documents,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
