package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rail_distance/internal/geo"
	"rail_distance/internal/models"
)

// CoordinateRepository is the station coordinate cache. It implements geo.Store.
type CoordinateRepository struct {
	db *gorm.DB
}

func NewCoordinateRepository(db *gorm.DB) *CoordinateRepository {
	return &CoordinateRepository{db: db}
}

// Find looks a coordinate up by cache key.
func (r *CoordinateRepository) Find(ctx context.Context, key string) (geo.Coordinate, bool, error) {
	var row models.StationCoordinate
	err := r.db.WithContext(ctx).Where(&models.StationCoordinate{Key: key}).First(&row).Error
	return toCoordinate(row, err)
}

// FindByCode returns the most recently written coordinate with the code.
func (r *CoordinateRepository) FindByCode(ctx context.Context, code string) (geo.Coordinate, bool, error) {
	var row models.StationCoordinate
	err := r.db.WithContext(ctx).Where(&models.StationCoordinate{Code: code}).Order("updated_at desc").First(&row).Error
	return toCoordinate(row, err)
}

// Record returns the stored row for a key, including the WKB location.
func (r *CoordinateRepository) Record(ctx context.Context, key string) (models.StationCoordinate, bool, error) {
	var row models.StationCoordinate
	err := r.db.WithContext(ctx).Where(&models.StationCoordinate{Key: key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, false, nil
	}
	if err != nil {
		return row, false, fmt.Errorf("query coordinate %q: %w", key, err)
	}
	return row, true, nil
}

// Save upserts c under every key; writing the same key again overwrites it.
func (r *CoordinateRepository) Save(ctx context.Context, c geo.Coordinate, keys ...string) error {
	location, err := models.PointWKB(c.Lat, c.Lon)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}

	seen := make(map[string]struct{}, len(keys))
	var rows []models.StationCoordinate
	now := time.Now()
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		row := models.StationCoordinate{
			Key:         k,
			Code:        c.Code,
			MatchedName: c.MatchedName,
			Latitude:    c.Lat,
			Longitude:   c.Lon,
			Location:    location,
		}
		row.CreatedAt, row.UpdatedAt = now, now
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "matched_name", "latitude", "longitude", "location", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("save coordinates: %w", err)
	}
	return nil
}

func toCoordinate(row models.StationCoordinate, err error) (geo.Coordinate, bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return geo.Coordinate{}, false, nil
	}
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("query coordinate: %w", err)
	}
	return geo.Coordinate{
		Code:        row.Code,
		MatchedName: row.MatchedName,
		Point:       geo.Point{Lat: row.Latitude, Lon: row.Longitude},
	}, true, nil
}
