package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type DocumentType string

const (
	DocumentNMCRegistration    DocumentType = "nmc_registration"
	DocumentDBSCheck           DocumentType = "dbs_check"
	DocumentRightToWork        DocumentType = "right_to_work"
	DocumentMandatoryTraining  DocumentType = "mandatory_training"
	DocumentOccupationalHealth DocumentType = "occupational_health"
	DocumentReference          DocumentType = "reference"
	DocumentOther              DocumentType = "other"
)

var documentLabels = map[DocumentType]string{
	DocumentNMCRegistration:    "NMC Registration",
	DocumentDBSCheck:           "DBS Check",
	DocumentRightToWork:        "Right to Work",
	DocumentMandatoryTraining:  "Mandatory Training",
	DocumentOccupationalHealth: "Occupational Health Clearance",
	DocumentReference:          "Reference",
	DocumentOther:              "Other",
}

func (t DocumentType) Valid() bool {
	_, ok := documentLabels[t]
	return ok
}

// Label is the human readable name used in notifications.
func (t DocumentType) Label() string {
	if label, ok := documentLabels[t]; ok {
		return label
	}
	return string(t)
}

type NurseDocument struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	NurseID      uint         `json:"nurse_id" gorm:"not null;index"`
	Nurse        *Nurse       `json:"nurse,omitempty" gorm:"foreignKey:NurseID"`
	DocumentType DocumentType `json:"document_type" gorm:"type:varchar(50);not null"`
	FileURL      string       `json:"file_url" gorm:"not null"`
	ExpiryDate   time.Time    `json:"expiry_date" gorm:"type:date;not null;index"`
	Verified     bool         `json:"verified" gorm:"not null"`
	VerifiedByID *uint        `json:"verified_by_id,omitempty"`
	VerifiedAt   *time.Time   `json:"verified_at,omitempty"`
	UploadedAt   time.Time    `json:"uploaded_at" gorm:"autoCreateTime"`
}

type NewDocumentInput struct {
	DocumentType DocumentType
	FileURL      string
	ExpiryDate   time.Time
}

// UploadDocument attaches a credential to one of the agency's nurses. The expiry date
// must be strictly after today.
func UploadDocument(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal, nurseID uint, input NewDocumentInput) (*NurseDocument, error) {
	if !input.DocumentType.Valid() {
		return nil, invalid("document_type", "is not a recognised document type")
	}
	fileURL := strings.TrimSpace(input.FileURL)
	if fileURL == "" {
		return nil, invalid("file_url", "is required")
	}
	if input.ExpiryDate.IsZero() {
		return nil, invalid("expiry_date", "is required")
	}
	expiry := dateOnly(input.ExpiryDate)
	if !expiry.After(Today()) {
		return nil, invalid("expiry_date", "must be in the future")
	}

	var doc *NurseDocument
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nurse, err := ownNurse(tx, agency, nurseID)
		if err != nil {
			return err
		}

		doc = &NurseDocument{
			NurseID:      nurse.ID,
			DocumentType: input.DocumentType,
			FileURL:      fileURL,
			ExpiryDate:   expiry,
		}
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// VerifyDocument marks a document verified. Only the first verification stamps verified_at.
func VerifyDocument(ctx context.Context, tx *gorm.DB, admin AdminPrincipal, documentID uint) (*NurseDocument, error) {
	var doc NurseDocument
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&NurseDocument{}).
			Where("id = ? AND verified_at IS NULL", documentID).
			Updates(map[string]any{
				"verified":       true,
				"verified_by_id": admin.UserID(),
				"verified_at":    Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("verify document: %w", err)
		}

		if err := tx.First(&doc, documentID).Error; err != nil {
			return notFound(err, "document")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListNurseDocuments returns the documents of one of the agency's nurses.
func ListNurseDocuments(ctx context.Context, tx *gorm.DB, agency AgencyPrincipal, nurseID uint) ([]NurseDocument, error) {
	db := tx.WithContext(ctx)
	if _, err := ownNurse(db, agency, nurseID); err != nil {
		return nil, err
	}

	var docs []NurseDocument
	if err := db.Where("nurse_id = ?", nurseID).Order("expiry_date asc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ExpiringDocuments returns documents with today < expiry_date <= today+days, with the
// nurse and owning agency loaded.
func ExpiringDocuments(ctx context.Context, tx *gorm.DB, today time.Time, days int) ([]NurseDocument, error) {
	if days < 0 {
		return nil, invalid("days", "must not be negative")
	}
	today = dateOnly(today)
	until := today.AddDate(0, 0, days)

	var docs []NurseDocument
	err := tx.WithContext(ctx).
		Preload("Nurse.Agency").
		Where("expiry_date <= ? AND expiry_date > ?", until, today).
		Order("expiry_date asc").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list expiring documents: %w", err)
	}
	return docs, nil
}
