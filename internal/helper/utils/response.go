package utils

import (
	"github.com/SundayYogurt/visa_service/pkg/apperrors"
	"github.com/SundayYogurt/visa_service/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "internal server error"

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// ResponseFromError maps a service error to its status. Internal errors are logged and
// answered with a generic message.
func ResponseFromError(ctx *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("request_id", requestID(ctx)).
			Str("method", ctx.Method()).
			Str("path", ctx.Path()).
			Msg("request failed")
		return ResponseError(ctx, status, internalErrorMessage)
	}
	return ResponseError(ctx, status, err.Error())
}

func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{"data": data})
}

func ResponsePaged(ctx *fiber.Ctx, data interface{}, page Pagination) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":       data,
		"pagination": page,
	})
}

// ErrorHandler is the fiber-level boundary for errors that escape handlers.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		if fe.Code >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("request_id", requestID(ctx)).Msg("unhandled error")
			return ResponseError(ctx, fe.Code, internalErrorMessage)
		}
		return ResponseError(ctx, fe.Code, fe.Message)
	}
	return ResponseFromError(ctx, err)
}

func requestID(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals("requestid").(string); ok {
		return v
	}
	return ""
}
