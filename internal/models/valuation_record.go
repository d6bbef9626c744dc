package models

import "time"

// ValuationRecord is one completed valuation, kept for the history screens.
// Subject, comparables and the adjustment breakdown are stored as JSON snapshots so a
// past report can be re-rendered exactly as it was computed.
type ValuationRecord struct {
	ID              uint   `gorm:"primaryKey"`
	Reference       string `gorm:"size:36;uniqueIndex;not null"` // uuid
	FinalValuation  float64
	ConfidenceScore float64
	Subject         string `gorm:"type:jsonb"`
	Comparables     string `gorm:"type:jsonb"`
	Adjustments     string `gorm:"type:jsonb"`
	Warnings        string `gorm:"type:jsonb"`
	CreatedBy       uint   `gorm:"index"`
	CreatedByName   string `gorm:"size:100"`
	CreatedAt       time.Time
}
