package handlers

import (
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/helper/utils"
	"github.com/SundayYogurt/visa_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type VerificationHandler struct {
	svc  services.VerificationService
	auth helper.Auth
}

func NewVerificationHandler(svc services.VerificationService, auth helper.Auth) *VerificationHandler {
	return &VerificationHandler{svc: svc, auth: auth}
}

func (h *VerificationHandler) SetupRoutes(p Portals) {
	// Student
	p.Student.Post("/verification-requests", h.Open)
	p.Student.Get("/verification-requests", h.ListMine)
	p.Student.Get("/verification-requests/:id", h.GetMine)

	// Staff
	p.Associate.Get("/verification-requests", h.List)
	p.Associate.Get("/verification-requests/:id", h.Get)
	p.Associate.Put("/verification-requests/:id", h.Update)
	p.Associate.Get("/verification-requests/:id/history", h.History)
}

func (h *VerificationHandler) Open(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.CreateVerificationRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	req, created, err := h.svc.Open(user, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	if created {
		return utils.ResponseSuccess(ctx, fiber.StatusCreated, req)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, req)
}

func (h *VerificationHandler) ListMine(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	reqs, err := h.svc.ListMine(user)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, reqs)
}

func (h *VerificationHandler) GetMine(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	req, err := h.svc.GetMine(user, id)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, req)
}

// GET /api/associate/verification-requests?status=&country_id=&assigned_to_id=&mine=true&page=&per_page=
func (h *VerificationHandler) List(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	countryID, err := queryUint(ctx, "country_id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	assignedTo, err := queryUint(ctx, "assigned_to_id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	if ctx.QueryBool("mine") {
		assignedTo = user.UserID
	}

	p := utils.ResolvePaging(ctx, 20, 100)
	reqs, total, err := h.svc.List(user, dto.VerificationFilter{
		Status:       ctx.Query("status"),
		CountryID:    countryID,
		AssignedToID: assignedTo,
		Limit:        p.Limit,
		Offset:       p.Offset,
	})
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponsePaged(ctx, reqs, utils.BuildPagination(total, p))
}

func (h *VerificationHandler) Get(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	req, err := h.svc.Get(user, id)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, req)
}

func (h *VerificationHandler) Update(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.UpdateVerificationRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	req, err := h.svc.Update(user, id, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, req)
}

func (h *VerificationHandler) History(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	logs, err := h.svc.History(user, id)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, logs)
}
