package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meinhoongagan/nhs-staffing/config"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

// NewApp builds the fiber app with every route group mounted. Handlers read the
// database from db.DB and their collaborators from controllers.Configure.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "nhs-staffing",
		ErrorHandler: func(c *fiber.Ctx, err error) error { return utils.RespondError(c, err) },
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	protected := middleware.Protected(cfg.JWTSecret)
	SetupAuthRoutes(app, protected, middleware.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginBurst))
	SetupAdminRoutes(app, protected)
	SetupAgencyRoutes(app, protected)
	SetupHospitalRoutes(app, protected)
	return app
}
