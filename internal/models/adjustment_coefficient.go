package models

import "time"

// AdjustmentCoefficient overrides one rate of the valuation rate table. Active
// coefficients are overlaid on the configured defaults before each calculation, so
// rates can be tuned without redeploying.
type AdjustmentCoefficient struct {
	ID          uint    `gorm:"primaryKey"`
	FeatureName string  `gorm:"size:100;uniqueIndex;not null"`
	Value       float64 `gorm:"not null"`
	Description string  `gorm:"size:255"`
	IsActive    bool    `gorm:"default:true"`
	CreatedBy   uint    `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
