package repository

import (
	"github.com/SundayYogurt/visa_service/internal/domain"
	"gorm.io/gorm"
)

type StudentRepository interface {
	FindByID(id uint) (*domain.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (s *studentRepository) FindByID(id uint) (*domain.Student, error) {
	var student domain.Student
	if err := s.db.First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}
