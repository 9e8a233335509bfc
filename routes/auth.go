package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/controllers"
	"github.com/meinhoongagan/nhs-staffing/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, protected fiber.Handler, loginLimiter *middleware.RateLimiter) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/register/agency", controllers.RegisterAgency)
	auth.Post("/login", middleware.LimitByIP(loginLimiter), controllers.Login)
	auth.Post("/refresh", controllers.RefreshToken)

	// Protected routes
	auth.Get("/me", protected, middleware.RequireRole(), controllers.GetUserProfile)

	app.Get("/dashboard", protected, middleware.RequireRole(), controllers.GetDashboard)
}
