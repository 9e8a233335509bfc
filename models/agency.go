package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Agency supplies nurses and is operated through exactly one agency user.
type Agency struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	User               User      `json:"-" gorm:"foreignKey:UserID"`
	Name               string    `json:"name" gorm:"not null"`
	ContactEmail       string    `json:"contact_email" gorm:"not null"`
	Phone              string    `json:"phone"`
	Address            string    `json:"address"`
	RegistrationNumber string    `json:"registration_number"`
	VATNumber          string    `json:"vat_number"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Agency) TableName() string {
	return "agencies"
}

type NewAgencyInput struct {
	Email              string
	Password           string
	Name               string
	ContactEmail       string
	Phone              string
	Address            string
	RegistrationNumber string
	VATNumber          string
}

// RegisterAgency signs up an agency user and its agency record in one transaction.
// The contact address defaults to the login email.
func RegisterAgency(ctx context.Context, tx *gorm.DB, input NewAgencyInput) (*Agency, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	contact := normalizeEmail(input.ContactEmail)
	if contact == "" {
		contact = normalizeEmail(input.Email)
	}

	var agency *Agency
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := CreateUser(ctx, tx, NewUserInput{
			Email:    input.Email,
			Password: input.Password,
			Role:     RoleAgency,
		})
		if err != nil {
			return err
		}

		agency = &Agency{
			UserID:             user.ID,
			Name:               name,
			ContactEmail:       contact,
			Phone:              strings.TrimSpace(input.Phone),
			Address:            strings.TrimSpace(input.Address),
			RegistrationNumber: strings.TrimSpace(input.RegistrationNumber),
			VATNumber:          strings.ToUpper(strings.TrimSpace(input.VATNumber)),
		}
		if err := tx.Create(agency).Error; err != nil {
			return fmt.Errorf("create agency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agency, nil
}
