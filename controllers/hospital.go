package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/metrics"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

type createShiftRequest struct {
	Ward              string  `json:"ward" validate:"required"`
	SpecialtyRequired string  `json:"specialty_required" validate:"required"`
	PONumber          string  `json:"po_number" validate:"required"`
	ShiftDate         string  `json:"shift_date" validate:"required,datetime=2006-01-02"`
	ShiftTime         string  `json:"shift_time" validate:"required,datetime=15:04"`
	DurationHours     float64 `json:"duration_hours" validate:"gte=0"`
	RatePerHour       float64 `json:"rate_per_hour" validate:"gte=0"`
}

func currentHospital(c *fiber.Ctx) (models.HospitalPrincipal, error) {
	hospital, ok := middleware.CurrentHospital(c)
	if !ok {
		return hospital, models.ErrPermissionDenied
	}
	return hospital, nil
}

func CreateShift(c *fiber.Ctx) error {
	hospital, err := currentHospital(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req createShiftRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}
	date, err := utils.ParseDate("shift_date", req.ShiftDate)
	if err != nil {
		return utils.RespondError(c, err)
	}

	shift, err := models.CreateShift(c.UserContext(), db.DB, hospital, models.NewShiftInput{
		Ward:              req.Ward,
		SpecialtyRequired: req.SpecialtyRequired,
		PONumber:          req.PONumber,
		ShiftDate:         date,
		ShiftTime:         req.ShiftTime,
		DurationHours:     req.DurationHours,
		RatePerHour:       req.RatePerHour,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("shift", "created")
	return c.Status(fiber.StatusCreated).JSON(shift)
}

// ListShifts returns the hospital's shifts, optionally filtered by ?status=.
func ListShifts(c *fiber.Ctx) error {
	hospital, err := currentHospital(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	shifts, err := models.ListHospitalShifts(c.UserContext(), db.DB, hospital, models.ShiftStatus(c.Query("status")))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(shifts)
}

func CompleteShift(c *fiber.Ctx) error {
	return transitionShift(c, models.CompleteShift, "completed")
}

func CancelShift(c *fiber.Ctx) error {
	return transitionShift(c, models.CancelShift, "cancelled")
}

type shiftOp func(context.Context, *gorm.DB, models.HospitalPrincipal, uint) (*models.Shift, error)

func transitionShift(c *fiber.Ctx, op shiftOp, event string) error {
	hospital, err := currentHospital(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	shift, err := op(c.UserContext(), db.DB, hospital, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("shift", event)
	return c.JSON(shift)
}

func ListHospitalBookings(c *fiber.Ctx) error {
	hospital, err := currentHospital(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	bookings, err := models.ListHospitalBookings(c.UserContext(), db.DB, hospital)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(bookings)
}

func ConfirmBooking(c *fiber.Ctx) error {
	hospital, err := currentHospital(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	booking, err := models.ConfirmBooking(c.UserContext(), db.DB, hospital, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("booking", "confirmed")
	return c.JSON(booking)
}
