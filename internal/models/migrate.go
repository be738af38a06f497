package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	return db.AutoMigrate(
		&User{},
		&Package{},
		&Customer{},
		&Invoice{},
		&Payment{},
		&InstallationJob{},
		&SystemSetting{},
		&NotificationLog{},
	)
}
