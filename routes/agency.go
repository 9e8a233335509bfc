package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/controllers"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
)

func SetupAgencyRoutes(app *fiber.App, protected fiber.Handler) {
	agency := app.Group("/agency", protected, middleware.RequireRole(models.RoleAgency))

	agency.Get("/nurses", controllers.ListNurses)
	agency.Post("/nurses", controllers.RegisterNurse)
	agency.Get("/nurses/bookable", controllers.ListBookableNurses)
	agency.Get("/nurses/:id/documents", controllers.ListNurseDocuments)
	agency.Post("/nurses/:id/documents", controllers.UploadDocument)

	agency.Get("/trusts", controllers.ListTrusts)
	agency.Get("/grants", controllers.ListAgencyGrants)
	agency.Post("/grants", controllers.RequestAccess)

	agency.Get("/shifts/available", controllers.ListAvailableShifts)
	agency.Post("/shifts/:id/book", controllers.BookShift)

	agency.Get("/bookings", controllers.ListAgencyBookings)
	agency.Post("/bookings/:id/cancel", controllers.CancelBooking)
}
