package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/interfaces"
	"github.com/SundayYogurt/visa_service/internal/repository"
	"github.com/SundayYogurt/visa_service/pkg/apperrors"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

type TicketService interface {
	Create(actor dto.AuthResponse, input dto.CreateTicketRequest) (*domain.Ticket, error)
	List(actor dto.AuthResponse, status string, limit, offset int) ([]dto.TicketSummary, int64, error)
	Get(actor dto.AuthResponse, id uint) (*domain.Ticket, error)
	AddMessage(actor dto.AuthResponse, id uint, input dto.CreateMessageRequest) (*domain.TicketMessage, error)
	Close(actor dto.AuthResponse, id uint) (*domain.Ticket, error)
}

type ticketService struct {
	ticketRepo  repository.TicketRepository
	studentRepo repository.StudentRepository
	staffRepo   repository.StaffRepository
	audit       auditor
	notify      notifier
	now         func() time.Time
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	studentRepo repository.StudentRepository,
	staffRepo repository.StaffRepository,
	auditRepo repository.AuditRepository,
	producer interfaces.ProducerHandler,
) TicketService {
	return &ticketService{
		ticketRepo:  ticketRepo,
		studentRepo: studentRepo,
		staffRepo:   staffRepo,
		audit:       auditor{repo: auditRepo},
		notify:      newNotifier(producer),
		now:         time.Now,
	}
}

func (s *ticketService) Create(actor dto.AuthResponse, input dto.CreateTicketRequest) (*domain.Ticket, error) {
	if actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("students only")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidation("title and description are required")
	}

	priority := domain.PriorityMedium
	if p := strings.TrimSpace(input.Priority); p != "" {
		priority = domain.TicketPriority(strings.ToUpper(p))
		if !priority.Valid() {
			return nil, apperrors.NewValidation("priority must be one of LOW, MEDIUM, HIGH, URGENT")
		}
	}

	student, err := s.studentRepo.FindByID(actor.UserID)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}

	ticket := &domain.Ticket{
		StudentID:     student.ID,
		AssociateID:   student.AssociateID,
		Title:         title,
		Description:   description,
		Priority:      priority,
		Status:        domain.TicketOpen,
		AttachmentURL: trimmedOrNil(input.AttachmentURL),
	}
	if err := s.ticketRepo.Create(ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	if ticket.AssociateID != nil {
		s.notifyStaff(*ticket.AssociateID, dto.EventTicketCreated, ticket, string(priority), description)
	}
	return ticket, nil
}

func (s *ticketService) List(actor dto.AuthResponse, status string, limit, offset int) ([]dto.TicketSummary, int64, error) {
	filter := repository.TicketFilter{Limit: limit, Offset: offset}
	if status != "" {
		st := domain.TicketStatus(strings.ToUpper(status))
		if st != domain.TicketOpen && st != domain.TicketClosed {
			return nil, 0, apperrors.NewValidation("status must be OPEN or CLOSED")
		}
		filter.Status = string(st)
	}

	switch actor.Role {
	case domain.RoleStudent:
		filter.StudentID = actor.UserID
	case domain.RoleAssociate:
		filter.AssociateID = actor.UserID
	case domain.RoleDirector:
	default:
		return nil, 0, apperrors.NewForbidden("unknown role")
	}

	tickets, total, err := s.ticketRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}

	ids := make([]uint, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	latest, err := s.ticketRepo.LatestMessages(ids)
	if err != nil {
		return nil, 0, fmt.Errorf("latest messages: %w", err)
	}

	out := make([]dto.TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		summary := dto.TicketSummary{Ticket: t}
		if m, ok := latest[t.ID]; ok {
			msg := m
			summary.LatestMessage = &msg
		}
		out = append(out, summary)
	}
	return out, total, nil
}

func (s *ticketService) Get(actor dto.AuthResponse, id uint) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.FindWithThread(id)
	if err != nil {
		return nil, notFoundOr(err, "ticket not found")
	}
	if err := canAccessTicket(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) AddMessage(actor dto.AuthResponse, id uint, input dto.CreateMessageRequest) (*domain.TicketMessage, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidation("content is required")
	}

	ticket, err := s.ticketRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "ticket not found")
	}
	if err := canAccessTicket(actor, ticket); err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketOpen {
		return nil, apperrors.NewValidation("ticket is closed")
	}

	msg := &domain.TicketMessage{
		TicketID:      ticket.ID,
		Content:       content,
		AttachmentURL: trimmedOrNil(input.AttachmentURL),
	}
	senderID := actor.UserID
	switch actor.Role {
	case domain.RoleStudent:
		msg.SenderType = domain.SenderStudent
		msg.StudentID = &senderID
	case domain.RoleAssociate:
		msg.SenderType = domain.SenderAssociate
		msg.AssociateID = &senderID
	case domain.RoleDirector:
		msg.SenderType = domain.SenderDirector
		msg.AssociateID = &senderID
	}

	if err := s.ticketRepo.AddMessage(msg); err != nil {
		if errors.Is(err, repository.ErrTicketClosed) {
			return nil, apperrors.NewValidation("ticket is closed")
		}
		return nil, notFoundOr(err, "ticket not found")
	}

	s.notifyCounterpart(actor, dto.EventTicketMessageCreated, ticket, content)
	return msg, nil
}

func (s *ticketService) Close(actor dto.AuthResponse, id uint) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "ticket not found")
	}
	if err := canAccessTicket(actor, ticket); err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketOpen {
		return nil, apperrors.NewValidation("ticket is already closed")
	}

	at := s.now()
	if err := s.ticketRepo.Close(id, at); err != nil {
		if errors.Is(err, repository.ErrTicketClosed) {
			return nil, apperrors.NewValidation("ticket is already closed")
		}
		return nil, fmt.Errorf("close ticket: %w", err)
	}
	ticket.Status = domain.TicketClosed
	ticket.ClosedAt = &at

	s.audit.record(actor, domain.AuditTicketClosed, domain.EntityTicket, id, nil)
	s.notifyCounterpart(actor, dto.EventTicketClosed, ticket, "")
	return ticket, nil
}

// canAccessTicket hides other students' tickets entirely; staff get 403 on tickets they are
// not assigned to, directors see everything.
func canAccessTicket(actor dto.AuthResponse, ticket *domain.Ticket) error {
	switch actor.Role {
	case domain.RoleStudent:
		if ticket.StudentID != actor.UserID {
			return apperrors.NewNotFound("ticket not found")
		}
	case domain.RoleAssociate:
		if ticket.AssociateID == nil || *ticket.AssociateID != actor.UserID {
			return apperrors.NewForbidden("ticket is not assigned to you")
		}
	case domain.RoleDirector:
	default:
		return apperrors.NewForbidden("unknown role")
	}
	return nil
}

// notifyCounterpart tells the other side of the thread about activity by actor.
func (s *ticketService) notifyCounterpart(actor dto.AuthResponse, eventType string, ticket *domain.Ticket, note string) {
	if s.notify.producer == nil {
		return
	}
	if actor.Role == domain.RoleStudent {
		if ticket.AssociateID != nil {
			s.notifyStaff(*ticket.AssociateID, eventType, ticket, string(ticket.Status), note)
		}
		return
	}

	student, err := s.studentRepo.FindByID(ticket.StudentID)
	if err != nil {
		logger.Warn().Err(err).Uint("ticket_id", ticket.ID).Msg("load student for notification")
		return
	}
	s.notify.publish(dto.NotificationEvent{
		Type:           eventType,
		RecipientEmail: student.Email,
		RecipientName:  student.FullName,
		SubjectID:      ticket.ID,
		Title:          ticket.Title,
		Status:         string(ticket.Status),
		Note:           note,
	})
}

func (s *ticketService) notifyStaff(staffID uint, eventType string, ticket *domain.Ticket, status, note string) {
	if s.notify.producer == nil {
		return
	}
	staff, err := s.staffRepo.FindByID(staffID)
	if err != nil {
		logger.Warn().Err(err).Uint("ticket_id", ticket.ID).Msg("load staff for notification")
		return
	}
	s.notify.publish(dto.NotificationEvent{
		Type:           eventType,
		RecipientEmail: staff.Email,
		RecipientName:  staff.FullName,
		SubjectID:      ticket.ID,
		Title:          ticket.Title,
		Status:         status,
		Note:           note,
	})
}
