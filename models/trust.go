package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// NHSTrust is the administrative body that owns hospitals.
type NHSTrust struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	Website      string     `json:"website"`
	Region       string     `json:"region"`
	ContactEmail string     `json:"contact_email"`
	ContactPhone string     `json:"contact_phone"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
	Hospitals    []Hospital `json:"hospitals,omitempty" gorm:"foreignKey:TrustID"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (NHSTrust) TableName() string {
	return "nhs_trusts"
}

type NewTrustInput struct {
	Name         string
	Website      string
	Region       string
	ContactEmail string
	ContactPhone string
}

func CreateTrust(ctx context.Context, tx *gorm.DB, _ AdminPrincipal, input NewTrustInput) (*NHSTrust, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	trust := &NHSTrust{
		Name:         name,
		Website:      strings.TrimSpace(input.Website),
		Region:       strings.TrimSpace(input.Region),
		ContactEmail: normalizeEmail(input.ContactEmail),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(trust).Error; err != nil {
		return nil, fmt.Errorf("create trust: %w", err)
	}
	return trust, nil
}

// ListTrusts returns every trust ordered by name.
func ListTrusts(ctx context.Context, tx *gorm.DB) ([]NHSTrust, error) {
	var trusts []NHSTrust
	if err := tx.WithContext(ctx).Order("name asc").Find(&trusts).Error; err != nil {
		return nil, fmt.Errorf("list trusts: %w", err)
	}
	return trusts, nil
}
