package middleware

import (
	"time"

	"github.com/SundayYogurt/visa_service/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// AccessLog writes one structured line per request once the handler chain has finished.
func AccessLog() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		ev := logger.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = logger.Error()
		case status >= fiber.StatusBadRequest:
			ev = logger.Warn()
		}

		rid, _ := ctx.Locals("requestid").(string)
		uid, _ := ctx.Locals("userID").(uint)
		ev.
			Str("request_id", rid).
			Str("method", ctx.Method()).
			Str("path", ctx.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Uint("user_id", uid).
			Msg("http request")

		return err
	}
}
