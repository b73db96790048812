package services

import (
	"fmt"
	"strings"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/repository"
	"github.com/SundayYogurt/visa_service/pkg/apperrors"
)

type CatalogService interface {
	// Countries
	ListCountries() ([]domain.Country, error)
	CreateCountry(actor dto.AuthResponse, input dto.CreateCountryRequest) (*domain.Country, error)

	// Document requirements
	ListActiveRequirements(countryID uint) ([]domain.DocumentRequirement, error)
	ListRequirements(countryID uint) ([]domain.DocumentRequirement, error)
	CreateRequirement(actor dto.AuthResponse, input dto.CreateRequirementRequest) (*domain.DocumentRequirement, error)
	UpdateRequirement(actor dto.AuthResponse, id uint, input dto.UpdateRequirementRequest) (*domain.DocumentRequirement, error)
	DeleteRequirement(actor dto.AuthResponse, id uint) error
}

type catalogService struct {
	countryRepo     repository.CountryRepository
	requirementRepo repository.RequirementRepository
	audit           auditor
}

func NewCatalogService(
	countryRepo repository.CountryRepository,
	requirementRepo repository.RequirementRepository,
	auditRepo repository.AuditRepository,
) CatalogService {
	return &catalogService{
		countryRepo:     countryRepo,
		requirementRepo: requirementRepo,
		audit:           auditor{repo: auditRepo},
	}
}

func (s *catalogService) ListCountries() ([]domain.Country, error) {
	return s.countryRepo.List()
}

func (s *catalogService) CreateCountry(actor dto.AuthResponse, input dto.CreateCountryRequest) (*domain.Country, error) {
	if err := requireDirector(actor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidation("title is required")
	}
	slug := helper.Slugify(input.Slug)
	if slug == "" {
		slug = helper.Slugify(title)
	}
	if slug == "" {
		return nil, apperrors.NewValidation("slug is invalid")
	}

	country := &domain.Country{
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    trimmedOrNil(input.ImageURL),
	}
	if err := s.countryRepo.Create(country); err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, apperrors.NewConflict("country slug already exists")
		}
		return nil, fmt.Errorf("create country: %w", err)
	}
	return country, nil
}

func (s *catalogService) ListActiveRequirements(countryID uint) ([]domain.DocumentRequirement, error) {
	if _, err := s.countryRepo.FindByID(countryID); err != nil {
		return nil, notFoundOr(err, "country not found")
	}
	return s.requirementRepo.ListActiveByCountry(countryID)
}

func (s *catalogService) ListRequirements(countryID uint) ([]domain.DocumentRequirement, error) {
	if _, err := s.countryRepo.FindByID(countryID); err != nil {
		return nil, notFoundOr(err, "country not found")
	}
	return s.requirementRepo.ListByCountry(countryID)
}

func (s *catalogService) CreateRequirement(actor dto.AuthResponse, input dto.CreateRequirementRequest) (*domain.DocumentRequirement, error) {
	if err := requireDirector(actor); err != nil {
		return nil, err
	}

	docType := strings.ToUpper(strings.TrimSpace(input.DocumentType))
	title := strings.TrimSpace(input.Title)
	if docType == "" || title == "" {
		return nil, apperrors.NewValidation("document_type and title are required")
	}

	types := helper.NormalizeTypes(input.AllowedTypes)
	if len(types) == 0 {
		return nil, apperrors.NewValidation("allowed_types must not be empty")
	}

	maxSize := input.MaxFileSize
	if maxSize < 0 {
		return nil, apperrors.NewValidation("max_file_size must be positive")
	}
	if maxSize == 0 {
		maxSize = domain.DefaultMaxFileSize
	}

	if _, err := s.countryRepo.FindByID(input.CountryID); err != nil {
		return nil, notFoundOr(err, "country not found")
	}

	req := &domain.DocumentRequirement{
		CountryID:    input.CountryID,
		DocumentType: docType,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Required:     input.Required == nil || *input.Required,
		MaxFileSize:  maxSize,
		AllowedTypes: types,
		Order:        input.Order,
		Active:       input.Active == nil || *input.Active,
		CreatedByID:  actor.UserID,
	}

	if err := s.requirementRepo.Create(req); err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, apperrors.NewConflict("duplicate requirement")
		}
		return nil, fmt.Errorf("create requirement: %w", err)
	}
	return req, nil
}

func (s *catalogService) UpdateRequirement(actor dto.AuthResponse, id uint, input dto.UpdateRequirementRequest) (*domain.DocumentRequirement, error) {
	if err := requireDirector(actor); err != nil {
		return nil, err
	}

	req, err := s.requirementRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "requirement not found")
	}

	if input.DocumentType != nil {
		v := strings.ToUpper(strings.TrimSpace(*input.DocumentType))
		if v == "" {
			return nil, apperrors.NewValidation("document_type cannot be empty")
		}
		req.DocumentType = v
	}
	if input.Title != nil {
		v := strings.TrimSpace(*input.Title)
		if v == "" {
			return nil, apperrors.NewValidation("title cannot be empty")
		}
		req.Title = v
	}
	if input.Description != nil {
		req.Description = strings.TrimSpace(*input.Description)
	}
	if input.Required != nil {
		req.Required = *input.Required
	}
	if input.MaxFileSize != nil {
		if *input.MaxFileSize <= 0 {
			return nil, apperrors.NewValidation("max_file_size must be positive")
		}
		req.MaxFileSize = *input.MaxFileSize
	}
	if input.AllowedTypes != nil {
		types := helper.NormalizeTypes(*input.AllowedTypes)
		if len(types) == 0 {
			return nil, apperrors.NewValidation("allowed_types must not be empty")
		}
		req.AllowedTypes = types
	}
	if input.Order != nil {
		req.Order = *input.Order
	}
	if input.Active != nil {
		req.Active = *input.Active
	}

	if err := s.requirementRepo.Save(req); err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, apperrors.NewConflict("duplicate requirement")
		}
		return nil, fmt.Errorf("update requirement: %w", err)
	}
	return req, nil
}

func (s *catalogService) DeleteRequirement(actor dto.AuthResponse, id uint) error {
	if err := requireDirector(actor); err != nil {
		return err
	}

	if _, err := s.requirementRepo.FindByID(id); err != nil {
		return notFoundOr(err, "requirement not found")
	}

	count, err := s.requirementRepo.CountDocuments(id)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return apperrors.NewConflict("requirement has submitted documents; deactivate it instead")
	}

	if err := s.requirementRepo.Delete(id); err != nil {
		return notFoundOr(err, "requirement not found")
	}

	s.audit.record(actor, domain.AuditRequirementDeleted, domain.EntityRequirement, id, nil)
	return nil
}
