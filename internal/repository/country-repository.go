package repository

import (
	"github.com/SundayYogurt/visa_service/internal/domain"
	"gorm.io/gorm"
)

type CountryRepository interface {
	Create(country *domain.Country) error
	FindByID(id uint) (*domain.Country, error)
	List() ([]domain.Country, error)
}

type countryRepository struct {
	db *gorm.DB
}

func NewCountryRepository(db *gorm.DB) CountryRepository {
	return &countryRepository{db: db}
}

func (c *countryRepository) Create(country *domain.Country) error {
	return c.db.Create(country).Error
}

func (c *countryRepository) FindByID(id uint) (*domain.Country, error) {
	var country domain.Country
	if err := c.db.First(&country, id).Error; err != nil {
		return nil, err
	}
	return &country, nil
}

func (c *countryRepository) List() ([]domain.Country, error) {
	var countries []domain.Country
	if err := c.db.Order("title ASC").Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}
