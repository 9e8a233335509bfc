package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedData is the fixture format accepted by Seed.
type SeedData struct {
	Admins []struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admins"`
	Trusts []struct {
		Name         string `yaml:"name"`
		Region       string `yaml:"region"`
		Website      string `yaml:"website"`
		ContactEmail string `yaml:"contact_email"`
		Hospitals    []struct {
			Name     string `yaml:"name"`
			Email    string `yaml:"email"`
			Password string `yaml:"password"`
			Address  string `yaml:"address"`
			Postcode string `yaml:"postcode"`
		} `yaml:"hospitals"`
	} `yaml:"trusts"`
	Agencies []struct {
		Name               string   `yaml:"name"`
		Email              string   `yaml:"email"`
		Password           string   `yaml:"password"`
		RegistrationNumber string   `yaml:"registration_number"`
		ApprovedTrusts     []string `yaml:"approved_trusts"`
	} `yaml:"agencies"`
}

// ParseSeed decodes a fixture. An empty document yields the built-in fixture.
func ParseSeed(raw []byte) (*SeedData, error) {
	if len(raw) == 0 {
		raw = defaultSeed
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &data, nil
}

// Seed loads the fixture through the same operations the API uses. Records whose login
// email or trust name already exist are skipped, so seeding twice is harmless.
func Seed(ctx context.Context, db *gorm.DB, data *SeedData) error {
	log := logger.WithModule("seed")

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin *models.User
		for _, a := range data.Admins {
			user, err := models.CreateUser(ctx, tx, models.NewUserInput{Email: a.Email, Password: a.Password, Role: models.RoleAdmin})
			if errors.Is(err, models.ErrUniqueness) {
				user = &models.User{}
				if err := tx.Where("email = ?", a.Email).Take(user).Error; err != nil {
					return err
				}
			} else if err != nil {
				return fmt.Errorf("seed admin %s: %w", a.Email, err)
			} else {
				log.Info("seeded admin", zap.String("email", a.Email))
			}
			if admin == nil {
				admin = user
			}
		}
		if admin == nil {
			return errors.New("seed: at least one admin is required")
		}
		principal := models.AdminPrincipal{User: admin}

		trustIDs := make(map[string]uint, len(data.Trusts))
		for _, t := range data.Trusts {
			var trust models.NHSTrust
			err := tx.Where("name = ?", t.Name).Take(&trust).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				created, err := models.CreateTrust(ctx, tx, principal, models.NewTrustInput{
					Name:         t.Name,
					Website:      t.Website,
					Region:       t.Region,
					ContactEmail: t.ContactEmail,
				})
				if err != nil {
					return fmt.Errorf("seed trust %s: %w", t.Name, err)
				}
				trust = *created
				log.Info("seeded trust", zap.String("name", t.Name))
			} else if err != nil {
				return err
			}
			trustIDs[t.Name] = trust.ID

			for _, h := range t.Hospitals {
				_, err := models.CreateHospital(ctx, tx, principal, models.NewHospitalInput{
					TrustID:  trust.ID,
					Email:    h.Email,
					Password: h.Password,
					Name:     h.Name,
					Address:  h.Address,
					Postcode: h.Postcode,
				})
				if err != nil && !errors.Is(err, models.ErrUniqueness) {
					return fmt.Errorf("seed hospital %s: %w", h.Name, err)
				}
			}
		}

		for _, a := range data.Agencies {
			agency, err := models.RegisterAgency(ctx, tx, models.NewAgencyInput{
				Email:              a.Email,
				Password:           a.Password,
				Name:               a.Name,
				RegistrationNumber: a.RegistrationNumber,
			})
			if errors.Is(err, models.ErrUniqueness) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed agency %s: %w", a.Name, err)
			}

			var user models.User
			if err := tx.First(&user, agency.UserID).Error; err != nil {
				return err
			}
			agencyPrincipal := models.AgencyPrincipal{User: &user, Agency: agency}
			for _, name := range a.ApprovedTrusts {
				trustID, ok := trustIDs[name]
				if !ok {
					return fmt.Errorf("seed agency %s: unknown trust %q", a.Name, name)
				}
				grant, err := models.RequestAccess(ctx, tx, agencyPrincipal, trustID, "seeded")
				if err != nil {
					return fmt.Errorf("seed grant %s/%s: %w", a.Name, name, err)
				}
				if _, err := models.ApproveGrant(ctx, tx, principal, grant.ID); err != nil {
					return err
				}
			}
			log.Info("seeded agency", zap.String("name", a.Name))
		}
		return nil
	})
}
