package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BookingState is derived from the confirmed and cancelled flags. Cancelled wins.
type BookingState string

const (
	BookingPending   BookingState = "pending"
	BookingConfirmed BookingState = "confirmed"
	BookingCancelled BookingState = "cancelled"
)

type Booking struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	ShiftID            uint       `json:"shift_id" gorm:"not null;uniqueIndex"`
	Shift              *Shift     `json:"shift,omitempty" gorm:"foreignKey:ShiftID"`
	NurseID            uint       `json:"nurse_id" gorm:"not null;index"`
	Nurse              *Nurse     `json:"nurse,omitempty" gorm:"foreignKey:NurseID"`
	AgencyID           uint       `json:"agency_id" gorm:"not null;index"`
	Agency             *Agency    `json:"agency,omitempty" gorm:"foreignKey:AgencyID"`
	BookedAt           time.Time  `json:"booked_at" gorm:"not null"`
	Confirmed          bool       `json:"confirmed" gorm:"not null"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	Cancelled          bool       `json:"cancelled" gorm:"not null"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (b *Booking) State() BookingState {
	switch {
	case b.Cancelled:
		return BookingCancelled
	case b.Confirmed:
		return BookingConfirmed
	}
	return BookingPending
}

// BookShift books one of the agency's nurses onto an open shift. The shift moves
// open -> booked through a conditional update, so of two concurrent bookings only one
// succeeds and the other gets ErrInvalidState.
//
// The nurse's approval is not re-checked here; ListBookableNurses is what offers
// approved nurses for booking.
func BookShift(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal, shiftID, nurseID uint) (*Booking, error) {
	var booking *Booking
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nurse, err := ownNurse(tx, agency, nurseID)
		if err != nil {
			return err
		}

		var shift Shift
		if err := tx.First(&shift, shiftID).Error; err != nil {
			return notFound(err, "shift")
		}
		if shift.Status != ShiftOpen {
			return fmt.Errorf("shift %d is %s: %w", shiftID, shift.Status, ErrInvalidState)
		}
		if err := setShiftStatus(tx, &shift, ShiftBooked); err != nil {
			return err
		}

		booking = &Booking{
			ShiftID:  shift.ID,
			NurseID:  nurse.ID,
			AgencyID: agency.Agency.ID,
			BookedAt: Now(),
		}
		if err := tx.Create(booking).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("shift %d already has a booking: %w", shiftID, ErrInvalidState)
			}
			return fmt.Errorf("create booking: %w", err)
		}
		booking.Shift = &shift
		booking.Nurse = nurse
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmBooking is the hospital's acceptance of a booking on one of its shifts.
// Confirming twice keeps the first confirmed_at; a cancelled booking cannot be confirmed.
func ConfirmBooking(ctx context.Context, tx *gorm.DB, hospital HospitalPrincipal, bookingID uint) (*Booking, error) {
	var booking Booking
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Shift").First(&booking, bookingID).Error; err != nil {
			return notFound(err, "booking")
		}
		if booking.Shift.HospitalID != hospital.Hospital.ID {
			return fmt.Errorf("booking %d is for another hospital: %w", bookingID, ErrPermissionDenied)
		}
		if booking.Cancelled {
			return fmt.Errorf("booking %d is cancelled: %w", bookingID, ErrInvalidState)
		}

		err := tx.Model(&Booking{}).
			Where("id = ? AND confirmed_at IS NULL AND cancelled_at IS NULL", bookingID).
			Updates(map[string]any{
				"confirmed":    true,
				"confirmed_at": Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("confirm booking: %w", err)
		}
		return reloadBooking(tx, &booking)
	})
	if err != nil {
		return nil, err
	}
	if booking.Cancelled {
		return nil, fmt.Errorf("booking %d was cancelled: %w", bookingID, ErrInvalidState)
	}
	return &booking, nil
}

// CancelBooking may be called by the booking agency or by the hospital owning the shift.
// The shift keeps its status.
func CancelBooking(ctx context.Context, tx *gorm.DB, principal Principal, bookingID uint, reason string) (*Booking, error) {
	var booking Booking
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Shift").First(&booking, bookingID).Error; err != nil {
			return notFound(err, "booking")
		}
		if !canCancel(principal, &booking) {
			return fmt.Errorf("booking %d: %w", bookingID, ErrPermissionDenied)
		}

		err := tx.Model(&Booking{}).
			Where("id = ? AND cancelled_at IS NULL", bookingID).
			Updates(map[string]any{
				"cancelled":           true,
				"cancelled_at":        Now(),
				"cancellation_reason": strings.TrimSpace(reason),
			}).Error
		if err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		return reloadBooking(tx, &booking)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func canCancel(principal Principal, booking *Booking) bool {
	switch p := principal.(type) {
	case AgencyPrincipal:
		return booking.AgencyID == p.Agency.ID
	case HospitalPrincipal:
		return booking.Shift.HospitalID == p.Hospital.ID
	}
	return false
}

func reloadBooking(tx *gorm.DB, booking *Booking) error {
	id := booking.ID
	*booking = Booking{}
	if err := tx.Preload("Shift").Preload("Nurse").First(booking, id).Error; err != nil {
		return notFound(err, "booking")
	}
	return nil
}

// ListAgencyBookings returns the agency's bookings, newest first.
func ListAgencyBookings(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal) ([]Booking, error) {
	var bookings []Booking
	err := tx.WithContext(ctx).
		Preload("Shift.Hospital").
		Preload("Nurse").
		Where("agency_id = ?", agency.Agency.ID).
		Order("booked_at desc").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list agency bookings: %w", err)
	}
	return bookings, nil
}

// ListHospitalBookings returns the bookings on the hospital's shifts.
func ListHospitalBookings(ctx context.Context, tx *gorm.DB, hospital HospitalPrincipal) ([]Booking, error) {
	var bookings []Booking
	err := tx.WithContext(ctx).
		Joins("JOIN shifts ON shifts.id = bookings.shift_id").
		Preload("Shift").
		Preload("Nurse").
		Preload("Agency").
		Where("shifts.hospital_id = ?", hospital.Hospital.ID).
		Order("bookings.booked_at desc").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list hospital bookings: %w", err)
	}
	return bookings, nil
}
