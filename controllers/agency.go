package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/metrics"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/redis"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

type registerNurseRequest struct {
	FullName           string `json:"full_name" validate:"required"`
	DOB                string `json:"dob" validate:"required,datetime=2006-01-02"`
	RegistrationNumber string `json:"registration_number" validate:"required"`
	Specialty          string `json:"specialty"`
}

type documentRequest struct {
	DocumentType models.DocumentType `json:"document_type" form:"document_type" validate:"required"`
	FileURL      string              `json:"file_url" form:"file_url"`
	ExpiryDate   string              `json:"expiry_date" form:"expiry_date" validate:"required,datetime=2006-01-02"`
}

type accessRequest struct {
	TrustID uint   `json:"trust_id" validate:"required"`
	Notes   string `json:"notes"`
}

type bookRequest struct {
	NurseID uint `json:"nurse_id" validate:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func currentAgency(c *fiber.Ctx) (models.AgencyPrincipal, error) {
	agency, ok := middleware.CurrentAgency(c)
	if !ok {
		return agency, models.ErrPermissionDenied
	}
	return agency, nil
}

func RegisterNurse(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req registerNurseRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}
	dob, err := utils.ParseDate("dob", req.DOB)
	if err != nil {
		return utils.RespondError(c, err)
	}

	nurse, err := models.RegisterNurse(c.UserContext(), db.DB, agency, models.NewNurseInput{
		FullName:           req.FullName,
		DOB:                dob,
		RegistrationNumber: req.RegistrationNumber,
		Specialty:          req.Specialty,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("nurse", "registered")
	return c.Status(fiber.StatusCreated).JSON(nurse)
}

func ListNurses(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	nurses, err := models.ListNurses(c.UserContext(), db.DB, agency)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(nurses)
}

// ListBookableNurses offers only approved nurses for the booking form.
func ListBookableNurses(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	nurses, err := models.ListBookableNurses(c.UserContext(), db.DB, agency)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(nurses)
}

// UploadDocument accepts either a multipart form with a "file" part, which is pushed to
// the file store, or a JSON body naming an already hosted file_url.
func UploadDocument(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	nurseID, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	var req documentRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}
	expiry, err := utils.ParseDate("expiry_date", req.ExpiryDate)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		url, err := storeUpload(c, nurseID)
		if err != nil {
			return utils.RespondError(c, err)
		}
		req.FileURL = url
	}

	doc, err := models.UploadDocument(c.UserContext(), db.DB, agency, nurseID, models.NewDocumentInput{
		DocumentType: req.DocumentType,
		FileURL:      req.FileURL,
		ExpiryDate:   expiry,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("document", "uploaded")
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func storeUpload(c *fiber.Ctx, nurseID uint) (string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", &models.ValidationError{Field: "file", Reason: "is required for multipart uploads"}
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	url, err := opts.Files.Upload(c.UserContext(), file, header.Filename, fmt.Sprintf("nurse-%d", nurseID))
	if errors.Is(err, utils.ErrStorageDisabled) {
		return "", fiber.NewError(fiber.StatusServiceUnavailable, "file uploads are not configured; send a file_url instead")
	}
	return url, err
}

func ListNurseDocuments(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	nurseID, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	docs, err := models.ListNurseDocuments(c.UserContext(), db.DB, agency, nurseID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(docs)
}

// RequestAccess files an access request against a trust.
func RequestAccess(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req accessRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	grant, err := models.RequestAccess(c.UserContext(), db.DB, agency, req.TrustID, req.Notes)
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("grant", "requested")
	return c.Status(fiber.StatusCreated).JSON(grant)
}

func ListAgencyGrants(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	grants, err := models.ListAgencyGrants(c.UserContext(), db.DB, agency)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(grants)
}

// ListAvailableShifts returns open shifts at trusts that approved the agency. The
// approved-trust set comes from redis when it is configured.
func ListAvailableShifts(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	ctx := c.UserContext()

	trustIDs, err := redis.CachedApprovedTrusts(ctx, opts.Cache, agency.Agency.ID, func(ctx context.Context) ([]uint, error) {
		return models.ListApprovedTrustIDs(ctx, db.DB, agency.Agency.ID)
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	shifts, err := models.OpenShiftsForTrusts(ctx, db.DB, trustIDs)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(shifts)
}

func BookShift(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	shiftID, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req bookRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	booking, err := models.BookShift(c.UserContext(), db.DB, agency, shiftID, req.NurseID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			metrics.BookingConflicts.Inc()
		}
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("booking", "created")
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func ListAgencyBookings(c *fiber.Ctx) error {
	agency, err := currentAgency(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	bookings, err := models.ListAgencyBookings(c.UserContext(), db.DB, agency)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(bookings)
}

// CancelBooking serves both the agency and hospital cancel routes; ownership is checked
// against whichever principal is calling.
func CancelBooking(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return utils.RespondError(c, models.ErrPermissionDenied)
	}
	id, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req cancelRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return utils.RespondError(c, err)
		}
	}

	booking, err := models.CancelBooking(c.UserContext(), db.DB, principal, id, req.Reason)
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("booking", "cancelled")
	return c.JSON(booking)
}
