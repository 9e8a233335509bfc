package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/models"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
}

type errorKind struct {
	target  error
	status  int
	message string
}

var errorKinds = []errorKind{
	{models.ErrValidation, fiber.StatusBadRequest, "Validation failed"},
	{models.ErrDuplicateGrant, fiber.StatusConflict, "Access already requested"},
	{models.ErrUniqueness, fiber.StatusConflict, "Already in use"},
	{models.ErrInvalidState, fiber.StatusConflict, "Invalid state"},
	{models.ErrPermissionDenied, fiber.StatusForbidden, "Permission denied"},
	{models.ErrNotFound, fiber.StatusNotFound, "Not found"},
	{models.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
	{models.ErrAccountDisabled, fiber.StatusUnauthorized, "Account disabled"},
}

func kindOf(err error) *errorKind {
	for i := range errorKinds {
		if errors.Is(err, errorKinds[i].target) {
			return &errorKinds[i]
		}
	}
	return nil
}

// StatusFor maps a domain error to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	if k := kindOf(err); k != nil {
		return k.status
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// RespondError writes err as an ErrorResponse. Internal errors are logged and their
// detail withheld from the client.
func RespondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	resp := ErrorResponse{Message: "Internal server error", Error: "internal error"}

	var fe *fiber.Error
	if k := kindOf(err); k != nil {
		resp.Message, resp.Error = k.message, err.Error()
	} else if errors.As(err, &fe) {
		resp.Message, resp.Error = fe.Message, fe.Message
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	if status == fiber.StatusInternalServerError {
		logger.WithModule("http").Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(resp)
}
