package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gasworks/servicedesk/internal/domain"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// RequireCustomer ensures a customer account is authenticated.
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil || principal.User.Role != domain.RoleCustomer {
			return apperrors.NewForbidden("customer account required")
		}
		return c.Next()
	}
}

// RequireStaff ensures a support staff account is authenticated.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.User.IsStaff() {
			return apperrors.NewForbidden("staff account required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
