package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// TrustAgencyAccess records whether an agency may see and book a trust's shifts.
type TrustAgencyAccess struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	TrustID      uint       `json:"trust_id" gorm:"not null;uniqueIndex:idx_trust_agency"`
	Trust        *NHSTrust  `json:"trust,omitempty" gorm:"foreignKey:TrustID"`
	AgencyID     uint       `json:"agency_id" gorm:"not null;uniqueIndex:idx_trust_agency"`
	Agency       *Agency    `json:"agency,omitempty" gorm:"foreignKey:AgencyID"`
	Approved     bool       `json:"approved" gorm:"not null;index"`
	ApprovedByID *uint      `json:"approved_by_id,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (TrustAgencyAccess) TableName() string {
	return "trust_agency_access"
}

// RequestAccess files an unapproved grant for the agency against a trust.
func RequestAccess(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal, trustID uint, notes string) (*TrustAgencyAccess, error) {
	grant := &TrustAgencyAccess{
		TrustID:  trustID,
		AgencyID: agency.Agency.ID,
		Notes:    strings.TrimSpace(notes),
	}

	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trust NHSTrust
		if err := tx.First(&trust, trustID).Error; err != nil {
			return notFound(err, "trust")
		}

		var existing int64
		err := tx.Model(&TrustAgencyAccess{}).
			Where("trust_id = ? AND agency_id = ?", trustID, agency.Agency.ID).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("check existing grant: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("trust %d, agency %d: %w", trustID, agency.Agency.ID, ErrDuplicateGrant)
		}

		if err := tx.Create(grant).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("trust %d, agency %d: %w", trustID, agency.Agency.ID, ErrDuplicateGrant)
			}
			return fmt.Errorf("create grant: %w", err)
		}
		grant.Trust = &trust
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// ApproveGrant marks the grant approved. approved_at and approved_by are stamped by the
// first approval only; approving again returns the grant unchanged.
func ApproveGrant(ctx context.Context, tx *gorm.DB, admin AdminPrincipal, grantID uint) (*TrustAgencyAccess, error) {
	var grant TrustAgencyAccess
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&TrustAgencyAccess{}).
			Where("id = ? AND approved_at IS NULL", grantID).
			Updates(map[string]any{
				"approved":       true,
				"approved_by_id": admin.UserID(),
				"approved_at":    Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("approve grant: %w", err)
		}

		if err := tx.Preload("Trust").First(&grant, grantID).Error; err != nil {
			return notFound(err, "grant")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// ListApprovedTrusts returns the trusts the agency holds an approved grant for.
func ListApprovedTrusts(ctx context.Context, tx *gorm.DB, agencyID uint) ([]NHSTrust, error) {
	var trusts []NHSTrust
	err := tx.WithContext(ctx).
		Where("id IN (?)", approvedTrustIDsQuery(tx.WithContext(ctx), agencyID)).
		Order("name asc").
		Find(&trusts).Error
	if err != nil {
		return nil, fmt.Errorf("list approved trusts: %w", err)
	}
	return trusts, nil
}

// ListApprovedTrustIDs is ListApprovedTrusts reduced to the trust ids.
func ListApprovedTrustIDs(ctx context.Context, tx *gorm.DB, agencyID uint) ([]uint, error) {
	var ids []uint
	if err := approvedTrustIDsQuery(tx.WithContext(ctx), agencyID).Pluck("trust_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list approved trust ids: %w", err)
	}
	return ids, nil
}

func approvedTrustIDsQuery(db *gorm.DB, agencyID uint) *gorm.DB {
	return db.Model(&TrustAgencyAccess{}).
		Select("trust_id").
		Where("agency_id = ? AND approved = ?", agencyID, true)
}

// GrantFilter narrows ListGrants. A nil Approved lists every grant.
type GrantFilter struct {
	Approved *bool
	TrustID  uint
	AgencyID uint
}

// ListGrants is the admin view over all grants.
func ListGrants(ctx context.Context, tx *gorm.DB, _ AdminPrincipal, filter GrantFilter) ([]TrustAgencyAccess, error) {
	query := tx.WithContext(ctx).Preload("Trust").Preload("Agency").Order("created_at asc")
	if filter.Approved != nil {
		query = query.Where("approved = ?", *filter.Approved)
	}
	if filter.TrustID != 0 {
		query = query.Where("trust_id = ?", filter.TrustID)
	}
	if filter.AgencyID != 0 {
		query = query.Where("agency_id = ?", filter.AgencyID)
	}

	var grants []TrustAgencyAccess
	if err := query.Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// ListAgencyGrants returns the agency's own grants, approved or not.
func ListAgencyGrants(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal) ([]TrustAgencyAccess, error) {
	var grants []TrustAgencyAccess
	err := tx.WithContext(ctx).
		Preload("Trust").
		Where("agency_id = ?", agency.Agency.ID).
		Order("created_at asc").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("list agency grants: %w", err)
	}
	return grants, nil
}
