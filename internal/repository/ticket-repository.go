package repository

import (
	"errors"
	"time"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTicketClosed = errors.New("ticket is closed")

type TicketFilter struct {
	StudentID   uint
	AssociateID uint
	Status      string
	Limit       int
	Offset      int
}

type TicketRepository interface {
	Create(ticket *domain.Ticket) error
	FindByID(id uint) (*domain.Ticket, error)
	FindWithThread(id uint) (*domain.Ticket, error)
	List(filter TicketFilter) ([]domain.Ticket, int64, error)
	LatestMessages(ticketIDs []uint) (map[uint]domain.TicketMessage, error)
	AddMessage(msg *domain.TicketMessage) error
	Close(id uint, at time.Time) error
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (t *ticketRepository) Create(ticket *domain.Ticket) error {
	return t.db.Create(ticket).Error
}

func (t *ticketRepository) FindByID(id uint) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := t.db.First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (t *ticketRepository) FindWithThread(id uint) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := t.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (t *ticketRepository) List(filter TicketFilter) ([]domain.Ticket, int64, error) {
	q := t.db.Model(&domain.Ticket{})
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.AssociateID != 0 {
		q = q.Where("associate_id = ?", filter.AssociateID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []domain.Ticket
	if err := q.Order("updated_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&tickets).Error; err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// LatestMessages returns the newest message of each ticket, keyed by ticket id.
func (t *ticketRepository) LatestMessages(ticketIDs []uint) (map[uint]domain.TicketMessage, error) {
	out := make(map[uint]domain.TicketMessage, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return out, nil
	}

	var msgs []domain.TicketMessage
	err := t.db.Raw(
		`SELECT DISTINCT ON (ticket_id) * FROM ticket_messages
		 WHERE ticket_id IN ?
		 ORDER BY ticket_id, created_at DESC, id DESC`, ticketIDs,
	).Scan(&msgs).Error
	if err != nil {
		return nil, err
	}

	for _, m := range msgs {
		out[m.TicketID] = m
	}
	return out, nil
}

// AddMessage appends to an OPEN ticket; the ticket row is locked so a concurrent close wins cleanly.
func (t *ticketRepository) AddMessage(msg *domain.TicketMessage) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		var ticket domain.Ticket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ticket, msg.TicketID).Error; err != nil {
			return err
		}
		if ticket.Status != domain.TicketOpen {
			return ErrTicketClosed
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Ticket{}).Where("id = ?", ticket.ID).Update("updated_at", time.Now()).Error
	})
}

func (t *ticketRepository) Close(id uint, at time.Time) error {
	res := t.db.Model(&domain.Ticket{}).
		Where("id = ? AND status = ?", id, domain.TicketOpen).
		Updates(map[string]any{
			"status":    domain.TicketClosed,
			"closed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTicketClosed
	}
	return nil
}
