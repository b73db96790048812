package repository

import (
	"github.com/SundayYogurt/visa_service/internal/domain"
	"gorm.io/gorm"
)

type StaffRepository interface {
	FindByID(id uint) (*domain.Staff, error)
	FindActiveByID(id uint) (*domain.Staff, error)
}

type staffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (s *staffRepository) FindByID(id uint) (*domain.Staff, error) {
	var staff domain.Staff
	if err := s.db.First(&staff, id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *staffRepository) FindActiveByID(id uint) (*domain.Staff, error) {
	var staff domain.Staff
	if err := s.db.Where("active = ?", true).First(&staff, id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}
