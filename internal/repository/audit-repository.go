package repository

import (
	"github.com/SundayYogurt/visa_service/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(entry *domain.AuditLog) error
	ListByEntity(entity string, entityID uint) ([]domain.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (a *auditRepository) Create(entry *domain.AuditLog) error {
	return a.db.Create(entry).Error
}

func (a *auditRepository) ListByEntity(entity string, entityID uint) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	err := a.db.Where("entity = ? AND entity_id = ?", entity, entityID).Order("created_at ASC").Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
