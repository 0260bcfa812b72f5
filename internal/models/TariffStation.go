package models

import (
	"gorm.io/gorm"

	"rail_distance/internal/tariff"
)

// TariffStation is one row of the station registry (book 2-РП).
// Seq keeps the registry order of the source files.
type TariffStation struct {
	gorm.Model
	Seq           int                   `json:"seq" gorm:"index"`
	Code          string                `json:"code" gorm:"size:6;uniqueIndex;not null"`
	Name          string                `json:"name" gorm:"index;not null"`
	Railway       string                `json:"railway"`
	Operations    string                `json:"operations"`
	TransitPoints []tariff.TransitPoint `json:"transit_points" gorm:"serializer:json"`
}

// Record converts the row to the in-memory registry type.
func (s TariffStation) Record() tariff.StationRecord {
	return tariff.StationRecord{
		Name:          s.Name,
		Code:          s.Code,
		Railway:       s.Railway,
		Operations:    s.Operations,
		TransitPoints: s.TransitPoints,
	}
}
