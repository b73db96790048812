package middleware

import (
	"strings"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/helper/utils"
	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the access token and admits only the given roles. The verified
// identity is stored under Locals("user") and Locals("userID").
func AuthMiddleware(auth helper.Auth, roles ...domain.Role) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// cookie first, then Authorization header
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
		}

		user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
		}

		if len(roles) > 0 && !hasRole(user.Role, roles) {
			return utils.ResponseError(ctx, fiber.StatusForbidden, "this portal is not available for your role")
		}

		ctx.Locals("userID", user.UserID)
		ctx.Locals("user", user)
		return ctx.Next()
	}
}

func DirectorOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := ctx.Locals("user").(dto.AuthResponse)
		if !ok || user.UserID == 0 {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
		}
		if !user.IsDirector() {
			return utils.ResponseError(ctx, fiber.StatusForbidden, "director only")
		}
		return ctx.Next()
	}
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
