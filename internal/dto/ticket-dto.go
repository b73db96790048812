package dto

import "github.com/SundayYogurt/visa_service/internal/domain"

type CreateTicketRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"required"`
	Priority      string  `json:"priority,omitempty"`
	AttachmentURL *string `json:"attachment_url,omitempty" validate:"omitempty,url"`
}

type CreateMessageRequest struct {
	Content       string  `json:"content" validate:"required"`
	AttachmentURL *string `json:"attachment_url,omitempty" validate:"omitempty,url"`
}

// TicketSummary is the list projection: a ticket with only its newest message.
type TicketSummary struct {
	domain.Ticket
	LatestMessage *domain.TicketMessage `json:"latest_message,omitempty"`
}
