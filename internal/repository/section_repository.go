package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rail_distance/internal/graph"
	"rail_distance/internal/models"
)

// SectionRepository stores the station chains of book 1.
type SectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// Section is a chain of stations together with the file it came from.
type Section struct {
	Source string
	Stops  []graph.Node
}

// Replace drops every stored section and inserts the given ones.
func (r *SectionRepository) Replace(ctx context.Context, sections []Section) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAll(tx, &models.SectionStop{}); err != nil {
			return fmt.Errorf("clear section stops: %w", err)
		}
		if err := deleteAll(tx, &models.RailwaySection{}); err != nil {
			return fmt.Errorf("clear sections: %w", err)
		}

		stops := 0
		for _, s := range sections {
			if len(s.Stops) < 2 {
				continue
			}
			row := models.RailwaySection{
				SourceFile: s.Source,
				StartCode:  s.Stops[0].Code,
				EndCode:    s.Stops[len(s.Stops)-1].Code,
			}
			for i, n := range s.Stops {
				row.Stops = append(row.Stops, models.SectionStop{Seq: i, Code: n.Code, Name: n.Name})
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert section from %s: %w", s.Source, err)
			}
			stops += len(row.Stops)
		}
		logrus.WithFields(logrus.Fields{"sections": len(sections), "stops": stops}).Info("repository: sections replaced")
		return nil
	})
}

// Chains returns every section's stops in order, sections in insert order.
func (r *SectionRepository) Chains(ctx context.Context) ([][]graph.Node, error) {
	var rows []models.RailwaySection
	err := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}

	chains := make([][]graph.Node, 0, len(rows))
	for _, row := range rows {
		chain := make([]graph.Node, 0, len(row.Stops))
		for _, s := range row.Stops {
			chain = append(chain, graph.Node{Code: s.Code, Name: s.Name})
		}
		chains = append(chains, chain)
	}
	return chains, nil
}
