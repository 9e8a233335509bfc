package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/metrics"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/redis"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

type createTrustRequest struct {
	Name         string `json:"name" validate:"required"`
	Website      string `json:"website" validate:"omitempty,url"`
	Region       string `json:"region"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
}

type createHospitalRequest struct {
	TrustID          uint   `json:"trust_id" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	Name             string `json:"name" validate:"required"`
	Address          string `json:"address"`
	Postcode         string `json:"postcode"`
	Phone            string `json:"phone"`
	EmergencyContact string `json:"emergency_contact"`
}

type changeRoleRequest struct {
	UserID uint        `json:"user_id" validate:"required"`
	Role   models.Role `json:"role" validate:"required,oneof=admin agency hospital"`
}

func currentAdmin(c *fiber.Ctx) (models.AdminPrincipal, error) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		return admin, models.ErrPermissionDenied
	}
	return admin, nil
}

func CreateTrust(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req createTrustRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	trust, err := models.CreateTrust(c.UserContext(), db.DB, admin, models.NewTrustInput{
		Name:         req.Name,
		Website:      req.Website,
		Region:       req.Region,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("trust", "created")
	return c.Status(fiber.StatusCreated).JSON(trust)
}

func ListTrusts(c *fiber.Ctx) error {
	trusts, err := models.ListTrusts(c.UserContext(), db.DB)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(trusts)
}

// CreateHospital registers a hospital and its login under an existing trust.
func CreateHospital(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req createHospitalRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	hospital, err := models.CreateHospital(c.UserContext(), db.DB, admin, models.NewHospitalInput{
		TrustID:          req.TrustID,
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		Address:          req.Address,
		Postcode:         req.Postcode,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("hospital", "created")
	return c.Status(fiber.StatusCreated).JSON(hospital)
}

func ChangeUserRole(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	var req changeRoleRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	user, err := models.ChangeRole(c.UserContext(), db.DB, admin, req.UserID, req.Role)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(user)
}

func ReactivateUser(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	user, err := models.ReactivateUser(c.UserContext(), db.DB, admin, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("user", "reactivated")
	return c.JSON(user)
}

// ListGrants supports ?approved=true|false, ?trust_id= and ?agency_id=.
func ListGrants(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	var filter models.GrantFilter
	if raw := c.Query("approved"); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.RespondError(c, &models.ValidationError{Field: "approved", Reason: "must be true or false"})
		}
		filter.Approved = &approved
	}
	filter.TrustID = uint(c.QueryInt("trust_id"))
	filter.AgencyID = uint(c.QueryInt("agency_id"))

	grants, err := models.ListGrants(c.UserContext(), db.DB, admin, filter)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(grants)
}

// ApproveGrant approves an access request and drops the agency's cached trust set.
func ApproveGrant(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	grant, err := models.ApproveGrant(c.UserContext(), db.DB, admin, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	redis.InvalidateApprovedTrusts(c.UserContext(), opts.Cache, grant.AgencyID)
	metrics.Lifecycle("grant", "approved")
	return c.JSON(grant)
}

func ListPendingNurses(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	nurses, err := models.ListPendingNurses(c.UserContext(), db.DB, admin)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(nurses)
}

func ApproveNurse(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	nurse, err := models.ApproveNurse(c.UserContext(), db.DB, admin, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("nurse", "approved")
	return c.JSON(nurse)
}

func VerifyDocument(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return utils.RespondError(c, err)
	}

	doc, err := models.VerifyDocument(c.UserContext(), db.DB, admin, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("document", "verified")
	return c.JSON(doc)
}
