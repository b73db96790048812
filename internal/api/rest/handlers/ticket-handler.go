package handlers

import (
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/helper/utils"
	"github.com/SundayYogurt/visa_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TicketHandler struct {
	svc  services.TicketService
	auth helper.Auth
}

func NewTicketHandler(svc services.TicketService, auth helper.Auth) *TicketHandler {
	return &TicketHandler{svc: svc, auth: auth}
}

func (h *TicketHandler) SetupRoutes(p Portals) {
	p.Student.Post("/tickets", h.Create)

	for _, r := range []fiber.Router{p.Student, p.Associate} {
		r.Get("/tickets", h.List)
		r.Get("/tickets/:id", h.Get)
		r.Post("/tickets/:id/messages", h.AddMessage)
		r.Patch("/tickets/:id/close", h.Close)
	}
}

func (h *TicketHandler) Create(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.CreateTicketRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	ticket, err := h.svc.Create(user, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, ticket)
}

// GET /tickets?status=OPEN|CLOSED&page=&per_page=
func (h *TicketHandler) List(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	p := utils.ResolvePaging(ctx, 20, 100)
	tickets, total, err := h.svc.List(user, ctx.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponsePaged(ctx, tickets, utils.BuildPagination(total, p))
}

func (h *TicketHandler) Get(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	ticket, err := h.svc.Get(user, id)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, ticket)
}

func (h *TicketHandler) AddMessage(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.CreateMessageRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	msg, err := h.svc.AddMessage(user, id, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, msg)
}

func (h *TicketHandler) Close(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	ticket, err := h.svc.Close(user, id)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, ticket)
}
