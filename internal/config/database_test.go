package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rail_distance/internal/logger"
	"rail_distance/internal/models"
)

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.GormLogger()})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))
	for _, m := range []interface{}{
		&models.TariffStation{},
		&models.TariffMatrixEntry{},
		&models.RailwaySection{},
		&models.SectionStop{},
		&models.StationCoordinate{},
		&models.User{},
	} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestDSN(t *testing.T) {
	d := Database{Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=disable TimeZone=UTC", d.DSN())
}
