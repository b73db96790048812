package domain

import "time"

// Audited actions.
const (
	AuditDocumentReviewed    = "DOCUMENT_REVIEWED"
	AuditDocumentReplaced    = "DOCUMENT_REPLACED"
	AuditRequestReassigned   = "REQUEST_REASSIGNED"
	AuditRequestStatusForced = "REQUEST_STATUS_OVERRIDDEN"
	AuditRequirementDeleted  = "REQUIREMENT_DELETED"
	AuditTicketClosed        = "TICKET_CLOSED"
)

// Audited entities.
const (
	EntityRequirement  = "document_requirement"
	EntityDocument     = "student_document"
	EntityVerification = "verification_request"
	EntityTicket       = "ticket"
)

// AuditLog is append-only. ActorID refers to staff or students depending on ActorRole.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   uint      `gorm:"not null;index:idx_audit_actor" json:"actor_id"`
	ActorRole Role      `gorm:"type:varchar(20);not null;index:idx_audit_actor" json:"actor_role"`
	Action    string    `gorm:"type:varchar(100);not null" json:"action"`
	Entity    string    `gorm:"type:varchar(100);not null;index:idx_audit_entity" json:"entity"`
	EntityID  uint      `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
