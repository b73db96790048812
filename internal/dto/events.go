package dto

const (
	EventDocumentReviewed     = "document.reviewed"
	EventVerificationStatus   = "verification.status_changed"
	EventTicketCreated        = "ticket.created"
	EventTicketMessageCreated = "ticket.message_created"
	EventTicketClosed         = "ticket.closed"
)

// NotificationEvent is the payload published to kafka and consumed by the mail notifier.
type NotificationEvent struct {
	Type           string `json:"type"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	SubjectID      uint   `json:"subject_id"`
	Title          string `json:"title"`
	Status         string `json:"status,omitempty"`
	Note           string `json:"note,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
