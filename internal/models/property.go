package models

import "time"

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeLand       PropertyType = "land"
)

// Property is a stored property record. Subject and comparable properties in a
// valuation request are plain value objects (internal/valuation); this model is the
// catalog entry users pick them from.
type Property struct {
	ID               uint         `gorm:"primaryKey"`
	Address          string       `gorm:"size:300;not null"`
	PropertyType     PropertyType `gorm:"size:20;index;not null"`
	Area             float64      `gorm:"not null"`
	FloorLevel       int          `gorm:"not null;default:1"`
	TotalFloors      int          `gorm:"not null;default:1"`
	Condition        string       `gorm:"size:20;not null"`
	RenovationStatus string       `gorm:"size:30;not null"`
	Lat              float64      `gorm:"not null"`
	Lng              float64      `gorm:"not null"`
	Price            float64      `gorm:"not null"`
	Features         string       `gorm:"type:jsonb"` // []valuation.Feature snapshot
	CreatedBy        uint         `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
