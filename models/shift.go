package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type ShiftStatus string

const (
	ShiftOpen      ShiftStatus = "open"
	ShiftBooked    ShiftStatus = "booked"
	ShiftCompleted ShiftStatus = "completed"
	ShiftCancelled ShiftStatus = "cancelled"
)

// shiftTransitions lists the statuses reachable from each status. Completed and
// cancelled are terminal.
var shiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftOpen:      {ShiftBooked, ShiftCancelled},
	ShiftBooked:    {ShiftCompleted, ShiftCancelled},
	ShiftCompleted: nil,
	ShiftCancelled: nil,
}

func (s ShiftStatus) Valid() bool {
	_, ok := shiftTransitions[s]
	return ok
}

func (s ShiftStatus) CanTransition(to ShiftStatus) bool {
	for _, next := range shiftTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Shift struct {
	ID                uint        `json:"id" gorm:"primaryKey"`
	HospitalID        uint        `json:"hospital_id" gorm:"not null;index"`
	Hospital          *Hospital   `json:"hospital,omitempty" gorm:"foreignKey:HospitalID"`
	Ward              string      `json:"ward" gorm:"not null"`
	SpecialtyRequired string      `json:"specialty_required" gorm:"not null"`
	PONumber          string      `json:"po_number" gorm:"column:po_number;not null"`
	ShiftDate         time.Time   `json:"shift_date" gorm:"type:date;not null;index"`
	ShiftTime         string      `json:"shift_time" gorm:"type:varchar(5);not null"`
	DurationHours     float64     `json:"duration_hours"`
	RatePerHour       float64     `json:"rate_per_hour"`
	Status            ShiftStatus `json:"status" gorm:"type:varchar(10);not null;index"`
	Booking           *Booking    `json:"booking,omitempty" gorm:"foreignKey:ShiftID"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = ShiftOpen
	}
	return nil
}

type NewShiftInput struct {
	Ward              string
	SpecialtyRequired string
	PONumber          string
	ShiftDate         time.Time
	ShiftTime         string
	DurationHours     float64
	RatePerHour       float64
}

// CreateShift posts an open shift for the hospital. The shift date may be today but not
// earlier.
func CreateShift(ctx context.Context, tx *gorm.DB, hospital HospitalPrincipal, input NewShiftInput) (*Shift, error) {
	ward := strings.TrimSpace(input.Ward)
	if ward == "" {
		return nil, invalid("ward", "is required")
	}
	specialty := strings.TrimSpace(input.SpecialtyRequired)
	if specialty == "" {
		return nil, invalid("specialty_required", "is required")
	}
	poNumber := strings.TrimSpace(input.PONumber)
	if poNumber == "" {
		return nil, invalid("po_number", "is required")
	}
	if input.ShiftDate.IsZero() {
		return nil, invalid("shift_date", "is required")
	}
	shiftDate := dateOnly(input.ShiftDate)
	if shiftDate.Before(Today()) {
		return nil, invalid("shift_date", "must not be in the past")
	}
	shiftTime := strings.TrimSpace(input.ShiftTime)
	if _, err := time.Parse("15:04", shiftTime); err != nil {
		return nil, invalid("shift_time", "must be HH:MM")
	}
	if input.DurationHours < 0 {
		return nil, invalid("duration_hours", "must not be negative")
	}
	if input.RatePerHour < 0 {
		return nil, invalid("rate_per_hour", "must not be negative")
	}

	shift := &Shift{
		HospitalID:        hospital.Hospital.ID,
		Ward:              ward,
		SpecialtyRequired: specialty,
		PONumber:          poNumber,
		ShiftDate:         shiftDate,
		ShiftTime:         shiftTime,
		DurationHours:     input.DurationHours,
		RatePerHour:       input.RatePerHour,
		Status:            ShiftOpen,
	}
	if err := tx.WithContext(ctx).Create(shift).Error; err != nil {
		return nil, fmt.Errorf("create shift: %w", err)
	}
	return shift, nil
}

// availableShiftsQuery selects open shifts at hospitals whose trust has approved the agency.
func availableShiftsQuery(db *gorm.DB, agencyID uint) *gorm.DB {
	return db.Model(&Shift{}).
		Joins("JOIN hospitals ON hospitals.id = shifts.hospital_id").
		Where("shifts.status = ? AND hospitals.trust_id IN (?)", ShiftOpen, approvedTrustIDsQuery(db, agencyID))
}

// ListAvailableShifts returns the open shifts the agency may book. An agency with no
// approved grant for a trust sees none of that trust's shifts.
func ListAvailableShifts(ctx context.Context, tx *gorm.DB, agencyID uint) ([]Shift, error) {
	db := tx.WithContext(ctx)

	var shifts []Shift
	err := availableShiftsQuery(db, agencyID).
		Preload("Hospital.Trust").
		Order("shifts.shift_date asc, shifts.shift_time asc").
		Find(&shifts).Error
	if err != nil {
		return nil, fmt.Errorf("list available shifts: %w", err)
	}
	return shifts, nil
}

// OpenShiftsForTrusts is ListAvailableShifts for an already resolved set of approved trusts.
func OpenShiftsForTrusts(ctx context.Context, tx *gorm.DB, trustIDs []uint) ([]Shift, error) {
	shifts := []Shift{}
	if len(trustIDs) == 0 {
		return shifts, nil
	}

	err := tx.WithContext(ctx).
		Joins("JOIN hospitals ON hospitals.id = shifts.hospital_id").
		Preload("Hospital.Trust").
		Where("shifts.status = ? AND hospitals.trust_id IN ?", ShiftOpen, trustIDs).
		Order("shifts.shift_date asc, shifts.shift_time asc").
		Find(&shifts).Error
	if err != nil {
		return nil, fmt.Errorf("list open shifts: %w", err)
	}
	return shifts, nil
}

// ListHospitalShifts returns the hospital's shifts, optionally narrowed to one status.
func ListHospitalShifts(ctx context.Context, tx *gorm.DB, hospital HospitalPrincipal, status ShiftStatus) ([]Shift, error) {
	query := tx.WithContext(ctx).
		Preload("Booking").
		Where("hospital_id = ?", hospital.Hospital.ID).
		Order("shift_date asc, shift_time asc")
	if status != "" {
		if !status.Valid() {
			return nil, invalid("status", "is not a shift status")
		}
		query = query.Where("status = ?", status)
	}

	var shifts []Shift
	if err := query.Find(&shifts).Error; err != nil {
		return nil, fmt.Errorf("list hospital shifts: %w", err)
	}
	return shifts, nil
}

// CompleteShift marks a booked shift as worked.
func CompleteShift(ctx context.Context, tx *gorm.DB, hospital HospitalPrincipal, shiftID uint) (*Shift, error) {
	return transitionShift(ctx, tx, hospital, shiftID, ShiftCompleted)
}

// CancelShift withdraws an open or booked shift.
func CancelShift(ctx context.Context, tx *gorm.DB, hospital HospitalPrincipal, shiftID uint) (*Shift, error) {
	return transitionShift(ctx, tx, hospital, shiftID, ShiftCancelled)
}

func transitionShift(ctx context.Context, tx *gorm.DB, hospital HospitalPrincipal, shiftID uint, to ShiftStatus) (*Shift, error) {
	var shift Shift
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&shift, shiftID).Error; err != nil {
			return notFound(err, "shift")
		}
		if shift.HospitalID != hospital.Hospital.ID {
			return fmt.Errorf("shift %d belongs to another hospital: %w", shiftID, ErrPermissionDenied)
		}
		return setShiftStatus(tx, &shift, to)
	})
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// setShiftStatus moves the shift along the transition table. The update is conditioned on
// the status read, so a concurrent change makes it fail with ErrInvalidState.
func setShiftStatus(tx *gorm.DB, shift *Shift, to ShiftStatus) error {
	from := shift.Status
	if !from.CanTransition(to) {
		return fmt.Errorf("shift %d cannot move from %s to %s: %w", shift.ID, from, to, ErrInvalidState)
	}

	res := tx.Model(&Shift{}).
		Where("id = ? AND status = ?", shift.ID, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("update shift status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shift %d is no longer %s: %w", shift.ID, from, ErrInvalidState)
	}
	shift.Status = to
	return nil
}
