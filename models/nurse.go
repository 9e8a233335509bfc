package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Nurse struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	AgencyID           uint            `json:"agency_id" gorm:"not null;index"`
	Agency             *Agency         `json:"agency,omitempty" gorm:"foreignKey:AgencyID"`
	FullName           string          `json:"full_name" gorm:"not null"`
	DOB                time.Time       `json:"dob" gorm:"column:dob;type:date;not null"`
	RegistrationNumber string          `json:"registration_number" gorm:"uniqueIndex;not null"`
	Specialty          string          `json:"specialty"`
	IsApproved         bool            `json:"is_approved" gorm:"not null;index"`
	ApprovedByID       *uint           `json:"approved_by_id,omitempty"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	Documents          []NurseDocument `json:"documents,omitempty" gorm:"foreignKey:NurseID"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type NewNurseInput struct {
	FullName           string
	DOB                time.Time
	RegistrationNumber string
	Specialty          string
}

// RegisterNurse adds a nurse to the agency's roster. The registration number is unique
// across all agencies.
func RegisterNurse(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal, input NewNurseInput) (*Nurse, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, invalid("full_name", "is required")
	}
	regNumber := strings.ToUpper(strings.TrimSpace(input.RegistrationNumber))
	if regNumber == "" {
		return nil, invalid("registration_number", "is required")
	}
	if input.DOB.IsZero() {
		return nil, invalid("dob", "is required")
	}
	dob := dateOnly(input.DOB)
	if dob.After(Today()) {
		return nil, invalid("dob", "must not be in the future")
	}

	nurse := &Nurse{
		AgencyID:           agency.Agency.ID,
		FullName:           fullName,
		DOB:                dob,
		RegistrationNumber: regNumber,
		Specialty:          strings.TrimSpace(input.Specialty),
	}

	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Nurse{}).Where("registration_number = ?", regNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("check registration number: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("registration number %s: %w", regNumber, ErrUniqueness)
		}

		if err := tx.Create(nurse).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("registration number %s: %w", regNumber, ErrUniqueness)
			}
			return fmt.Errorf("create nurse: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nurse, nil
}

// ApproveNurse makes the nurse bookable. Only the first approval stamps approved_at.
func ApproveNurse(ctx context.Context, tx *gorm.DB, admin AdminPrincipal, nurseID uint) (*Nurse, error) {
	var nurse Nurse
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Nurse{}).
			Where("id = ? AND approved_at IS NULL", nurseID).
			Updates(map[string]any{
				"is_approved":    true,
				"approved_by_id": admin.UserID(),
				"approved_at":    Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("approve nurse: %w", err)
		}

		if err := tx.First(&nurse, nurseID).Error; err != nil {
			return notFound(err, "nurse")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &nurse, nil
}

// ListNurses returns the agency's roster.
func ListNurses(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal) ([]Nurse, error) {
	var nurses []Nurse
	err := tx.WithContext(ctx).
		Where("agency_id = ?", agency.Agency.ID).
		Order("full_name asc").
		Find(&nurses).Error
	if err != nil {
		return nil, fmt.Errorf("list nurses: %w", err)
	}
	return nurses, nil
}

// ListBookableNurses returns the agency's approved nurses, the choices offered when booking.
func ListBookableNurses(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal) ([]Nurse, error) {
	var nurses []Nurse
	err := tx.WithContext(ctx).
		Where("agency_id = ? AND is_approved = ?", agency.Agency.ID, true).
		Order("full_name asc").
		Find(&nurses).Error
	if err != nil {
		return nil, fmt.Errorf("list bookable nurses: %w", err)
	}
	return nurses, nil
}

// ListPendingNurses returns nurses awaiting approval across all agencies.
func ListPendingNurses(ctx context.Context, tx *gorm.DB, _ AdminPrincipal) ([]Nurse, error) {
	var nurses []Nurse
	err := tx.WithContext(ctx).
		Preload("Agency").
		Preload("Documents").
		Where("is_approved = ?", false).
		Order("created_at asc").
		Find(&nurses).Error
	if err != nil {
		return nil, fmt.Errorf("list pending nurses: %w", err)
	}
	return nurses, nil
}

// ownNurse loads a nurse and checks it belongs to the agency.
func ownNurse(tx *gorm.DB, agency AgencyPrincipal, nurseID uint) (*Nurse, error) {
	var nurse Nurse
	if err := tx.First(&nurse, nurseID).Error; err != nil {
		return nil, notFound(err, "nurse")
	}
	if nurse.AgencyID != agency.Agency.ID {
		return nil, fmt.Errorf("nurse %d belongs to another agency: %w", nurseID, ErrPermissionDenied)
	}
	return &nurse, nil
}
