package middleware

import (
	"log/slog"

	"sales-inventory/app/domain"
	"sales-inventory/app/handler/api/response"
	"sales-inventory/pkg"
	"sales-inventory/pkg/ctxutil"

	"github.com/gofiber/fiber/v2"
)

// Auth validates the bearer token and stores its subject and role in the
// request locals.
func Auth(secretKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := pkg.GetTokenFromHeaders(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			slog.WarnContext(c.Context(), "[middleware] Auth", "GetTokenFromHeaders", err)
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		claims, err := pkg.ParseJwtToken(token, secretKey)
		if err != nil {
			slog.WarnContext(c.Context(), "[middleware] Auth", "ParseJwtToken", err)
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		c.Locals(ctxutil.SubjectKey, claims.Subject)
		c.Locals(ctxutil.RoleKey, claims.Role)
		return c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, _ := c.Locals(ctxutil.RoleKey).(string)
		if got != role {
			slog.WarnContext(c.Context(), "[middleware] RequireRole", "role", got, "required", role)
			return c.Status(fiber.StatusForbidden).JSON(response.Error(domain.ErrForbidden))
		}
		return c.Next()
	}
}
