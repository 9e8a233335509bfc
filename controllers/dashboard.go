package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

// GetDashboard returns the landing counters for whichever role is calling.
func GetDashboard(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return utils.RespondError(c, models.ErrPermissionDenied)
	}

	dash, err := principal.Dashboard(c.UserContext(), db.DB)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(dash)
}
