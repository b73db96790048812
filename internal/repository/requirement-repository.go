package repository

import (
	"github.com/SundayYogurt/visa_service/internal/domain"
	"gorm.io/gorm"
)

type RequirementRepository interface {
	Create(req *domain.DocumentRequirement) error
	Save(req *domain.DocumentRequirement) error
	Delete(id uint) error
	FindByID(id uint) (*domain.DocumentRequirement, error)
	ListActiveByCountry(countryID uint) ([]domain.DocumentRequirement, error)
	ListByCountry(countryID uint) ([]domain.DocumentRequirement, error)
	CountDocuments(id uint) (int64, error)
}

type requirementRepository struct {
	db *gorm.DB
}

func NewRequirementRepository(db *gorm.DB) RequirementRepository {
	return &requirementRepository{db: db}
}

func (r *requirementRepository) Create(req *domain.DocumentRequirement) error {
	return r.db.Create(req).Error
}

func (r *requirementRepository) Save(req *domain.DocumentRequirement) error {
	return r.db.Save(req).Error
}

func (r *requirementRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.DocumentRequirement{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *requirementRepository) FindByID(id uint) (*domain.DocumentRequirement, error) {
	var req domain.DocumentRequirement
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepository) ListActiveByCountry(countryID uint) ([]domain.DocumentRequirement, error) {
	var reqs []domain.DocumentRequirement
	err := r.db.
		Where("country_id = ? AND active = ?", countryID, true).
		Order("sort_order ASC, title ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requirementRepository) ListByCountry(countryID uint) ([]domain.DocumentRequirement, error) {
	var reqs []domain.DocumentRequirement
	err := r.db.
		Where("country_id = ?", countryID).
		Order("sort_order ASC, title ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requirementRepository) CountDocuments(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.StudentDocument{}).Where("requirement_id = ?", id).Count(&count).Error
	return count, err
}
