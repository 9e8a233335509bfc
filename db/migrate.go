package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/models"
)

// Migrate brings the schema up to date with the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logger.WithModule("db").Info("migrations applied")
	return nil
}
