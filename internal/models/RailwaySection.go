package models

import (
	"gorm.io/gorm"
)

// RailwaySection is a chain of adjacent stations read from a book 1 file.
// The adjacency graph is built from the stops of every section.
type RailwaySection struct {
	gorm.Model

	SourceFile string `json:"source_file"`
	StartCode  string `json:"start_code"`
	EndCode    string `json:"end_code"`

	Stops []SectionStop `gorm:"foreignKey:SectionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"stops,omitempty"`
}
