package repository

import (
	"errors"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"gorm.io/gorm"
)

type VerificationRepository interface {
	FindOrCreateOpen(studentID, countryID uint) (*domain.VerificationRequest, bool, error)
	FindByID(id uint) (*domain.VerificationRequest, error)
	FindDetailed(id uint) (*domain.VerificationRequest, error)
	ListByStudent(studentID uint) ([]domain.VerificationRequest, error)
	List(filter dto.VerificationFilter) ([]domain.VerificationRequest, int64, error)
	Update(id uint, fields map[string]any) error
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

// FindOrCreateOpen returns the student's unfinished request for a country, creating a
// PENDING one when none exists. The bool reports whether a row was created.
// A concurrent caller that loses the insert race gets the winner's row.
func (v *verificationRepository) FindOrCreateOpen(studentID, countryID uint) (*domain.VerificationRequest, bool, error) {
	req, err := v.findOpen(studentID, countryID)
	if err == nil {
		return req, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := domain.VerificationRequest{
		StudentID: studentID,
		CountryID: countryID,
		Status:    domain.VerificationPending,
	}
	if err := v.db.Create(&created).Error; err != nil {
		if !helper.IsDuplicateKey(err) {
			return nil, false, err
		}
		req, err := v.findOpen(studentID, countryID)
		if err != nil {
			return nil, false, err
		}
		return req, false, nil
	}
	return &created, true, nil
}

func (v *verificationRepository) findOpen(studentID, countryID uint) (*domain.VerificationRequest, error) {
	var req domain.VerificationRequest
	err := v.db.
		Where("student_id = ? AND country_id = ? AND status <> ?", studentID, countryID, domain.VerificationCompleted).
		Order("created_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (v *verificationRepository) FindByID(id uint) (*domain.VerificationRequest, error) {
	var req domain.VerificationRequest
	if err := v.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (v *verificationRepository) FindDetailed(id uint) (*domain.VerificationRequest, error) {
	var req domain.VerificationRequest
	err := v.db.
		Preload("Student").
		Preload("Country").
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Documents.Requirement").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (v *verificationRepository) ListByStudent(studentID uint) ([]domain.VerificationRequest, error) {
	var reqs []domain.VerificationRequest
	err := v.db.
		Preload("Country").
		Preload("Documents").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (v *verificationRepository) List(filter dto.VerificationFilter) ([]domain.VerificationRequest, int64, error) {
	q := v.db.Model(&domain.VerificationRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CountryID != 0 {
		q = q.Where("country_id = ?", filter.CountryID)
	}
	if filter.AssignedToID != 0 {
		q = q.Where("assigned_to_id = ?", filter.AssignedToID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []domain.VerificationRequest
	err := q.
		Preload("Student").
		Preload("Country").
		Order("updated_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&reqs).Error
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (v *verificationRepository) Update(id uint, fields map[string]any) error {
	res := v.db.Model(&domain.VerificationRequest{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
