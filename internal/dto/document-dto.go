package dto

import "github.com/SundayYogurt/visa_service/internal/domain"

// SubmitDocumentRequest references a file already placed in storage (see UploadResponse).
type SubmitDocumentRequest struct {
	RequirementID    uint   `json:"requirement_id" validate:"required"`
	FileURL          string `json:"file_url" validate:"required"`
	OriginalName     string `json:"original_name" validate:"required,max=255"`
	FileName         string `json:"file_name" validate:"required,max=255"`
	FileSize         int64  `json:"file_size"`
	MimeType         string `json:"mime_type" validate:"max=100"`
	ParentDocumentID *uint  `json:"parent_document_id,omitempty"`
}

type ReviewDocumentRequest struct {
	Status          string  `json:"status" validate:"required"`
	ReviewNotes     *string `json:"review_notes,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

type ReviewDocumentResponse struct {
	Document              domain.StudentDocument    `json:"document"`
	VerificationRequestID uint                      `json:"verification_request_id"`
	RequestStatus         domain.VerificationStatus `json:"request_status"`
}

type UploadResponse struct {
	FileURL      string `json:"file_url"`
	FileName     string `json:"file_name"`
	OriginalName string `json:"original_name"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
}
