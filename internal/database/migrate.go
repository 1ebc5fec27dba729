package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// Migrate creates or updates every table owned by the service, including the
// read-only directory tables used for joins.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Class{},
		&models.Report{},
		&models.ReportFeedback{},
		&models.Rating{},
		&models.AuditEvent{},
	)
}
