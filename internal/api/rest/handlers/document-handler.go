package handlers

import (
	"errors"
	"strconv"

	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/helper/utils"
	"github.com/SundayYogurt/visa_service/internal/services"
	pkgutils "github.com/SundayYogurt/visa_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// maxUploadBytes caps what is read into memory; per-requirement limits are checked by the service.
const maxUploadBytes = 20 * 1024 * 1024

type DocumentHandler struct {
	svc  services.DocumentService
	auth helper.Auth
}

func NewDocumentHandler(svc services.DocumentService, auth helper.Auth) *DocumentHandler {
	return &DocumentHandler{svc: svc, auth: auth}
}

func (h *DocumentHandler) SetupRoutes(p Portals) {
	p.Student.Post("/verification-requests/:id/documents", h.Submit)
	p.Student.Post("/uploads", h.Upload)

	p.Associate.Post("/documents/:id/review", h.Review)
}

// POST /api/student/verification-requests/:id/documents
func (h *DocumentHandler) Submit(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	requestID, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.SubmitDocumentRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	doc, created, err := h.svc.Submit(user, requestID, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	if created {
		return utils.ResponseSuccess(ctx, fiber.StatusCreated, doc)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, doc)
}

// POST /api/associate/documents/:id/review
func (h *DocumentHandler) Review(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	documentID, err := paramID(ctx, "id")
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	var input dto.ReviewDocumentRequest
	if err := utils.ParseAndValidate(ctx, &input); err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	res, err := h.svc.Review(user, documentID, input)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
}

// POST /api/student/uploads
// form-data: file=<document>, requirement_id=<id>
func (h *DocumentHandler) Upload(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, h.auth)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}

	requirementID, err := strconv.ParseUint(ctx.FormValue("requirement_id"), 10, 64)
	if err != nil || requirementID == 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "requirement_id is required")
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "file is required")
	}
	if file.Size > maxUploadBytes {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "file too large")
	}

	f, err := file.Open()
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer f.Close()

	data, err := pkgutils.ReadAllLimit(f, maxUploadBytes)
	if err != nil {
		if errors.Is(err, pkgutils.ErrTooLarge) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "file too large")
		}
		return utils.ResponseFromError(ctx, err)
	}

	res, err := h.svc.Upload(ctx.UserContext(), user, uint(requirementID), file.Filename, data)
	if err != nil {
		return utils.ResponseFromError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, res)
}

