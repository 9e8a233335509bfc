package models

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Principal is the authenticated actor behind a request. ResolvePrincipal is the only
// place the role tag is inspected; everything downstream works with the concrete type.
type Principal interface {
	UserID() uint
	Role() Role
	// Dashboard returns the role's landing counters.
	Dashboard(ctx context.Context, tx *gorm.DB) (*Dashboard, error)
}

// Dashboard is a role-specific set of counters.
type Dashboard struct {
	Role   Role             `json:"role"`
	Counts map[string]int64 `json:"counts"`
}

type AdminPrincipal struct {
	User *User
}

type AgencyPrincipal struct {
	User   *User
	Agency *Agency
}

type HospitalPrincipal struct {
	User     *User
	Hospital *Hospital
}

func (p AdminPrincipal) UserID() uint    { return p.User.ID }
func (p AdminPrincipal) Role() Role      { return RoleAdmin }
func (p AgencyPrincipal) UserID() uint   { return p.User.ID }
func (p AgencyPrincipal) Role() Role     { return RoleAgency }
func (p HospitalPrincipal) UserID() uint { return p.User.ID }
func (p HospitalPrincipal) Role() Role   { return RoleHospital }

// ResolvePrincipal loads the user and the record its role acts through.
// Inactive users and users whose role record is missing resolve to ErrPermissionDenied.
func ResolvePrincipal(ctx context.Context, tx *gorm.DB, userID uint) (Principal, error) {
	var user User
	if err := tx.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user %d: %w", userID, ErrAccountDisabled)
	}

	switch user.Role {
	case RoleAdmin:
		return AdminPrincipal{User: &user}, nil
	case RoleAgency:
		var agency Agency
		if err := tx.WithContext(ctx).Where("user_id = ?", user.ID).Take(&agency).Error; err != nil {
			return nil, fmt.Errorf("agency user %d has no agency (%v): %w", user.ID, err, ErrPermissionDenied)
		}
		return AgencyPrincipal{User: &user, Agency: &agency}, nil
	case RoleHospital:
		var hospital Hospital
		if err := tx.WithContext(ctx).Where("user_id = ?", user.ID).Take(&hospital).Error; err != nil {
			return nil, fmt.Errorf("hospital user %d has no hospital (%v): %w", user.ID, err, ErrPermissionDenied)
		}
		return HospitalPrincipal{User: &user, Hospital: &hospital}, nil
	}
	return nil, fmt.Errorf("user %d has unknown role %q: %w", user.ID, user.Role, ErrPermissionDenied)
}

type counter struct {
	name  string
	query *gorm.DB
}

func runCounters(role Role, counters []counter) (*Dashboard, error) {
	dash := &Dashboard{Role: role, Counts: make(map[string]int64, len(counters))}
	for _, c := range counters {
		var n int64
		if err := c.query.Count(&n).Error; err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", c.name, err)
		}
		dash.Counts[c.name] = n
	}
	return dash, nil
}

func (p AdminPrincipal) Dashboard(ctx context.Context, tx *gorm.DB) (*Dashboard, error) {
	db := tx.WithContext(ctx)
	return runCounters(RoleAdmin, []counter{
		{"pending_grants", db.Model(&TrustAgencyAccess{}).Where("approved = ?", false)},
		{"pending_nurses", db.Model(&Nurse{}).Where("is_approved = ?", false)},
		{"unverified_documents", db.Model(&NurseDocument{}).Where("verified = ?", false)},
		{"open_shifts", db.Model(&Shift{}).Where("status = ?", ShiftOpen)},
	})
}

func (p AgencyPrincipal) Dashboard(ctx context.Context, tx *gorm.DB) (*Dashboard, error) {
	db := tx.WithContext(ctx)
	agencyID := p.Agency.ID
	return runCounters(RoleAgency, []counter{
		{"nurses", db.Model(&Nurse{}).Where("agency_id = ?", agencyID)},
		{"approved_nurses", db.Model(&Nurse{}).Where("agency_id = ? AND is_approved = ?", agencyID, true)},
		{"approved_trusts", db.Model(&TrustAgencyAccess{}).Where("agency_id = ? AND approved = ?", agencyID, true)},
		{"available_shifts", availableShiftsQuery(db, agencyID)},
		{"active_bookings", db.Model(&Booking{}).Where("agency_id = ? AND cancelled = ?", agencyID, false)},
	})
}

func (p HospitalPrincipal) Dashboard(ctx context.Context, tx *gorm.DB) (*Dashboard, error) {
	db := tx.WithContext(ctx)
	hospitalID := p.Hospital.ID
	return runCounters(RoleHospital, []counter{
		{"open_shifts", db.Model(&Shift{}).Where("hospital_id = ? AND status = ?", hospitalID, ShiftOpen)},
		{"booked_shifts", db.Model(&Shift{}).Where("hospital_id = ? AND status = ?", hospitalID, ShiftBooked)},
		{"unconfirmed_bookings", db.Model(&Booking{}).
			Joins("JOIN shifts ON shifts.id = bookings.shift_id").
			Where("shifts.hospital_id = ? AND bookings.confirmed = ? AND bookings.cancelled = ?", hospitalID, false, false)},
	})
}
