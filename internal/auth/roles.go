package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// RequireAnyRole ensures caller is authenticated (student or admin).
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireAdmin ensures an administrator is authenticated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeAdmin || principal.Admin == nil {
			return fiber.NewError(http.StatusForbidden, "admin required")
		}
		return c.Next()
	}
}

// RequireSuperAdmin restricts admin-management routes.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Admin == nil || principal.Admin.Role != domain.AdminRoleSuperAdmin {
			return fiber.NewError(http.StatusForbidden, "super admin privileges required")
		}
		return c.Next()
	}
}

// RequirePermission gates a route on an admin capability flag.
func RequirePermission(check func(*domain.Admin) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Admin == nil {
			return fiber.NewError(http.StatusForbidden, "admin required")
		}
		if !check(principal.Admin) {
			return fiber.NewError(http.StatusForbidden, "insufficient permission")
		}
		return c.Next()
	}
}
