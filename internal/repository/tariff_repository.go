// Package repository persists tariff tables, station sections, the coordinate
// cache and operator accounts with gorm.
package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rail_distance/internal/models"
	"rail_distance/internal/tariff"
)

const batchSize = 500

// TariffRepository stores the registry and matrices imported from the
// tariff books and serves them back as a tariff.Source.
type TariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

// ReplaceStations swaps the whole registry table in one transaction.
func (r *TariffRepository) ReplaceStations(ctx context.Context, records []tariff.StationRecord) error {
	rows := make([]models.TariffStation, 0, len(records))
	for i, rec := range records {
		rows = append(rows, models.TariffStation{
			Seq:           i,
			Code:          rec.Code,
			Name:          rec.Name,
			Railway:       rec.Railway,
			Operations:    rec.Operations,
			TransitPoints: rec.TransitPoints,
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAll(tx, &models.TariffStation{}); err != nil {
			return fmt.Errorf("clear stations: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return fmt.Errorf("insert stations: %w", err)
		}
		logrus.WithField("stations", len(rows)).Info("repository: station registry replaced")
		return nil
	})
}

// ReplaceMatrices swaps every matrix; the slice order becomes the lookup order.
func (r *TariffRepository) ReplaceMatrices(ctx context.Context, matrices []*tariff.Matrix) error {
	var rows []models.TariffMatrixEntry
	for seq, m := range matrices {
		for _, e := range m.Entries() {
			rows = append(rows, models.TariffMatrixEntry{
				Matrix:    m.Name,
				MatrixSeq: seq,
				FromPoint: e.From,
				ToPoint:   e.To,
				KM:        e.KM,
			})
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAll(tx, &models.TariffMatrixEntry{}); err != nil {
			return fmt.Errorf("clear matrices: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return fmt.Errorf("insert matrices: %w", err)
		}
		logrus.WithFields(logrus.Fields{"matrices": len(matrices), "entries": len(rows)}).
			Info("repository: distance matrices replaced")
		return nil
	})
}

// Stations implements tariff.Source.
func (r *TariffRepository) Stations(ctx context.Context) ([]tariff.StationRecord, error) {
	var rows []models.TariffStation
	if err := r.db.WithContext(ctx).Order("seq").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: query stations: %v", tariff.ErrSourceUnreadable, err)
	}
	out := make([]tariff.StationRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record())
	}
	return out, nil
}

// Matrices implements tariff.Source. Entries are grouped by matrix in load
// order.
func (r *TariffRepository) Matrices(ctx context.Context) ([]*tariff.Matrix, error) {
	var rows []models.TariffMatrixEntry
	if err := r.db.WithContext(ctx).Order("matrix_seq").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: query matrices: %v", tariff.ErrSourceUnreadable, err)
	}

	var (
		out     []*tariff.Matrix
		name    string
		seq     = -1
		entries []tariff.MatrixEntry
	)
	flush := func() {
		if seq >= 0 {
			out = append(out, tariff.NewMatrix(name, entries))
		}
	}
	for _, row := range rows {
		if row.MatrixSeq != seq {
			flush()
			name, seq, entries = row.Matrix, row.MatrixSeq, nil
		}
		entries = append(entries, tariff.MatrixEntry{From: row.FromPoint, To: row.ToPoint, KM: row.KM})
	}
	flush()
	return out, nil
}

func deleteAll(tx *gorm.DB, model interface{}) error {
	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error
}
