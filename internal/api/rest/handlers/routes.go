package handlers

import (
	"strconv"

	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/pkg/apperrors"
	"github.com/gofiber/fiber/v2"
)

// Portals are the two authenticated route groups: /api/student and /api/associate.
type Portals struct {
	Student   fiber.Router
	Associate fiber.Router
}

func currentUser(ctx *fiber.Ctx, auth helper.Auth) (dto.AuthResponse, error) {
	user, err := auth.GetCurrentUser(ctx)
	if err != nil {
		return dto.AuthResponse{}, apperrors.NewUnauthorized("unauthorized")
	}
	return user, nil
}

func paramID(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidation("invalid " + name)
	}
	return uint(id), nil
}

func queryUint(ctx *fiber.Ctx, name string) (uint, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidation("invalid " + name)
	}
	return uint(id), nil
}
