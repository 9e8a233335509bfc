package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/controllers"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
)

func SetupHospitalRoutes(app *fiber.App, protected fiber.Handler) {
	hospital := app.Group("/hospital", protected, middleware.RequireRole(models.RoleHospital))

	hospital.Get("/shifts", controllers.ListShifts)
	hospital.Post("/shifts", controllers.CreateShift)
	hospital.Post("/shifts/:id/complete", controllers.CompleteShift)
	hospital.Post("/shifts/:id/cancel", controllers.CancelShift)

	hospital.Get("/bookings", controllers.ListHospitalBookings)
	hospital.Post("/bookings/:id/confirm", controllers.ConfirmBooking)
	hospital.Post("/bookings/:id/cancel", controllers.CancelBooking)
}
