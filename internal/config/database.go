package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rail_distance/internal/logger"
	"rail_distance/internal/models"
)

// OpenDB connects to postgres and migrates the schema.
func OpenDB(d Database) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(d.DSN()), &gorm.Config{
		Logger:         logger.GormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.TariffStation{},
		&models.TariffMatrixEntry{},
		&models.RailwaySection{},
		&models.SectionStop{},
		&models.StationCoordinate{},
		&models.User{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
