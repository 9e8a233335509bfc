package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

const principalKey = "principal"

// RequireRole resolves the caller's principal and rejects it unless its role is one of
// roles. With no roles any resolved principal passes. Must run after Protected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
				Message: "Unauthorized",
				Error:   "no authenticated user",
			})
		}

		principal, err := models.ResolvePrincipal(c.UserContext(), db.DB, userID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrAccountDisabled) {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Unauthorized",
					Error:   err.Error(),
				})
			}
			return utils.RespondError(c, err)
		}

		if len(roles) > 0 && !hasRole(principal.Role(), roles) {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Permission denied",
				Error:   "this action requires the " + joinRoles(roles) + " role",
			})
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func hasRole(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func joinRoles(roles []models.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}

// CurrentPrincipal returns the principal stored by RequireRole.
func CurrentPrincipal(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals(principalKey).(models.Principal)
	return p, ok
}

func CurrentAdmin(c *fiber.Ctx) (models.AdminPrincipal, bool) {
	p, ok := c.Locals(principalKey).(models.AdminPrincipal)
	return p, ok
}

func CurrentAgency(c *fiber.Ctx) (models.AgencyPrincipal, bool) {
	p, ok := c.Locals(principalKey).(models.AgencyPrincipal)
	return p, ok
}

func CurrentHospital(c *fiber.Ctx) (models.HospitalPrincipal, bool) {
	p, ok := c.Locals(principalKey).(models.HospitalPrincipal)
	return p, ok
}
