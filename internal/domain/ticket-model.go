package domain

import "time"

type TicketStatus string

const (
	TicketOpen   TicketStatus = "OPEN"
	TicketClosed TicketStatus = "CLOSED"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type SenderType string

const (
	SenderStudent   SenderType = "STUDENT"
	SenderAssociate SenderType = "ASSOCIATE"
	SenderDirector  SenderType = "DIRECTOR"
)

type Ticket struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	StudentID     uint           `gorm:"not null;index" json:"student_id"`
	AssociateID   *uint          `gorm:"index" json:"associate_id,omitempty"`
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Priority      TicketPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Status        TicketStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	AttachmentURL *string        `gorm:"type:text" json:"attachment_url,omitempty"`
	ClosedAt      *time.Time     `json:"closed_at,omitempty"`

	Messages []TicketMessage `gorm:"foreignKey:TicketID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"messages,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type TicketMessage struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TicketID      uint       `gorm:"not null;index" json:"ticket_id"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	AttachmentURL *string    `gorm:"type:text" json:"attachment_url,omitempty"`
	SenderType    SenderType `gorm:"type:varchar(20);not null" json:"sender_type"`
	StudentID     *uint      `gorm:"index" json:"student_id,omitempty"`
	AssociateID   *uint      `gorm:"index" json:"associate_id,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
