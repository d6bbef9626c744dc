package models

import "time"

// Client - a person or company ordering appraisals.
type Client struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	Email     string `gorm:"size:100;index"`
	Phone     string `gorm:"size:30"`
	Company   string `gorm:"size:200"`
	Notes     string `gorm:"size:1000"`
	CreatedBy uint   `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
