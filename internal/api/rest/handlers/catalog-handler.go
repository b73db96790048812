package handlers

import (
	"github.com/SundayYogurt/visa_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/helper/utils"
	"github.com/SundayYogurt/visa_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	svc  services.CatalogService
	auth helper.Auth
}

func NewCatalogHandler(svc services.CatalogService, auth helper.Auth) *CatalogHandler {
	return &CatalogHandler{svc: svc, auth: auth}
}

func (h *CatalogHandler) SetupRoutes(p Portals) {
	// Student
	p.Student.Get("/countries", h.ListCountries)
	p.Student.Get("/document-requirements/:countryId", h.ListActiveRequirements)

	// Staff
	p.Associate.Get("/countries", h.ListCountries)
	p.Associate.Post("/countries", middleware.DirectorOnly(), h.CreateCountry)
	p.Associate.Get("/document-requirements/:countryId", h.ListRequirements)
	p.Associate.Post("/document-requirements", middleware.DirectorOnly(), h.CreateRequirement)
	p.Associate.Put("/document-requirements/:id", middleware.DirectorOnly(), h.UpdateRequirement)
	p.Associate.Delete("/document-requirements/:id", middleware.DirectorOnly(), h.DeleteRequirement)
}

func (h *CatalogHandler) ListCountries(ctx *fiber.Ctx) error {
	countries, err := h.svc.ListCountries()
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, countries)
}

func (h *CatalogHandler) CreateCountry(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.CreateCountryRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	country, err := h.svc.CreateCountry(user, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, country)
}

func (h *CatalogHandler) ListActiveRequirements(ctx *fiber.Ctx) error {
	countryID, err := paramID(ctx, "countryId")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	reqs, err := h.svc.ListActiveRequirements(countryID)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, reqs)
}

func (h *CatalogHandler) ListRequirements(ctx *fiber.Ctx) error {
	countryID, err := paramID(ctx, "countryId")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	reqs, err := h.svc.ListRequirements(countryID)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, reqs)
}

func (h *CatalogHandler) CreateRequirement(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.CreateRequirementRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	req, err := h.svc.CreateRequirement(user, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, req)
}

func (h *CatalogHandler) UpdateRequirement(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.UpdateRequirementRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	req, err := h.svc.UpdateRequirement(user, id, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, req)
}

func (h *CatalogHandler) DeleteRequirement(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	if err := h.svc.DeleteRequirement(user, id); err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "requirement deleted")
}
