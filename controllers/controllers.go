package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

// Options carries the collaborators the handlers need besides the database.
type Options struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Files      utils.FileStore
	Cache      *goredis.Client
}

var opts = Options{
	JWTSecret:  "solid_secret_key",
	AccessTTL:  24 * time.Hour,
	RefreshTTL: 7 * 24 * time.Hour,
}

// Configure installs the handler options. Call it before serving.
func Configure(o Options) {
	if o.Files == nil {
		o.Files = utils.NewDisabledFileStore()
	}
	opts = o
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}

// parseBody decodes and validates a JSON body.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot parse request body")
	}
	return utils.ValidateStruct(out)
}
