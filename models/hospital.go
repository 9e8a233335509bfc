package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Hospital belongs to one trust and is operated through exactly one hospital user.
type Hospital struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	TrustID          uint      `json:"trust_id" gorm:"not null;index"`
	Trust            *NHSTrust `json:"trust,omitempty" gorm:"foreignKey:TrustID"`
	UserID           uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	User             User      `json:"-" gorm:"foreignKey:UserID"`
	Name             string    `json:"name" gorm:"not null"`
	Address          string    `json:"address"`
	Postcode         string    `json:"postcode"`
	Phone            string    `json:"phone"`
	EmergencyContact string    `json:"emergency_contact"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type NewHospitalInput struct {
	TrustID          uint
	Email            string
	Password         string
	Name             string
	Address          string
	Postcode         string
	Phone            string
	EmergencyContact string
}

// CreateHospital creates the hospital user and the hospital record together.
func CreateHospital(ctx context.Context, tx *gorm.DB, _ AdminPrincipal, input NewHospitalInput) (*Hospital, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	var hospital *Hospital
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trust NHSTrust
		if err := tx.First(&trust, input.TrustID).Error; err != nil {
			return notFound(err, "trust")
		}

		user, err := CreateUser(ctx, tx, NewUserInput{
			Email:    input.Email,
			Password: input.Password,
			Role:     RoleHospital,
		})
		if err != nil {
			return err
		}

		hospital = &Hospital{
			TrustID:          trust.ID,
			UserID:           user.ID,
			Name:             name,
			Address:          strings.TrimSpace(input.Address),
			Postcode:         strings.ToUpper(strings.TrimSpace(input.Postcode)),
			Phone:            strings.TrimSpace(input.Phone),
			EmergencyContact: strings.TrimSpace(input.EmergencyContact),
		}
		if err := tx.Create(hospital).Error; err != nil {
			return fmt.Errorf("create hospital: %w", err)
		}
		hospital.Trust = &trust
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hospital, nil
}
