package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/controllers"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
)

func SetupAdminRoutes(app *fiber.App, protected fiber.Handler) {
	admin := app.Group("/admin", protected, middleware.RequireRole(models.RoleAdmin))

	admin.Get("/trusts", controllers.ListTrusts)
	admin.Post("/trusts", controllers.CreateTrust)
	admin.Post("/hospitals", controllers.CreateHospital)

	admin.Post("/users/role", controllers.ChangeUserRole)
	admin.Post("/users/:id/reactivate", controllers.ReactivateUser)

	admin.Get("/grants", controllers.ListGrants)
	admin.Post("/grants/:id/approve", controllers.ApproveGrant)

	admin.Get("/nurses/pending", controllers.ListPendingNurses)
	admin.Post("/nurses/:id/approve", controllers.ApproveNurse)
	admin.Post("/documents/:id/verify", controllers.VerifyDocument)
}
