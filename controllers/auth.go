package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/metrics"
	"github.com/meinhoongagan/nhs-staffing/middleware"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

type registerAgencyRequest struct {
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=8"`
	Name               string `json:"name" validate:"required"`
	ContactEmail       string `json:"contact_email" validate:"omitempty,email"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
	VATNumber          string `json:"vat_number"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// RegisterAgency is the public sign-up for agencies. It creates the login and the
// agency record together.
func RegisterAgency(c *fiber.Ctx) error {
	var req registerAgencyRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	agency, err := models.RegisterAgency(c.UserContext(), db.DB, models.NewAgencyInput{
		Email:              req.Email,
		Password:           req.Password,
		Name:               req.Name,
		ContactEmail:       req.ContactEmail,
		Phone:              req.Phone,
		Address:            req.Address,
		RegistrationNumber: req.RegistrationNumber,
		VATNumber:          req.VATNumber,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	metrics.Lifecycle("agency", "registered")
	return c.Status(fiber.StatusCreated).JSON(agency)
}

// Login checks the credentials and issues an access/refresh token pair.
func Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	user, err := models.Authenticate(c.UserContext(), db.DB, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		case errors.Is(err, models.ErrAccountDisabled):
			metrics.LoginAttempts.WithLabelValues("disabled").Inc()
		}
		return utils.RespondError(c, err)
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.WithModule("auth").Info("login", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))

	return issueTokens(c, user)
}

// RefreshToken exchanges a refresh token for a new pair. The account must still be active.
func RefreshToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}

	userID, err := middleware.ParseToken(opts.JWTSecret, req.RefreshToken, middleware.TokenRefresh)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
			Message: "Invalid refresh token",
			Error:   err.Error(),
		})
	}

	var user models.User
	if err := db.DB.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
			Message: "Invalid refresh token",
			Error:   "user no longer exists",
		})
	}
	if !user.IsActive {
		return utils.RespondError(c, models.ErrAccountDisabled)
	}
	return issueTokens(c, &user)
}

// GetUserProfile returns the caller's user record.
func GetUserProfile(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return utils.RespondError(c, models.ErrPermissionDenied)
	}

	var user models.User
	if err := db.DB.WithContext(c.UserContext()).First(&user, principal.UserID()).Error; err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(user)
}

func issueTokens(c *fiber.Ctx, user *models.User) error {
	access, err := middleware.IssueToken(opts.JWTSecret, user, middleware.TokenAccess, opts.AccessTTL)
	if err != nil {
		return utils.RespondError(c, err)
	}
	refresh, err := middleware.IssueToken(opts.JWTSecret, user, middleware.TokenRefresh, opts.RefreshTTL)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(tokenResponse{AccessToken: access, RefreshToken: refresh, User: user})
}
