package dto

type CreateVerificationRequest struct {
	CountryID uint `json:"country_id" validate:"required"`
}

type UpdateVerificationRequest struct {
	AssignedToID *uint   `json:"assigned_to_id,omitempty"`
	Status       *string `json:"status,omitempty"`
	ReviewNotes  *string `json:"review_notes,omitempty"`
}

type VerificationFilter struct {
	Status       string
	CountryID    uint
	AssignedToID uint
	Limit        int
	Offset       int
}
