package models

import (
	"gorm.io/gorm"
)

// SectionStop is a station on a section; Seq gives its position.
type SectionStop struct {
	gorm.Model

	SectionID uint   `json:"section_id" gorm:"index"`
	Seq       int    `json:"seq"`
	Code      string `json:"code" gorm:"size:6;index"`
	Name      string `json:"name"`
}
