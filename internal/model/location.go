package model

import "time"

// DefaultLocationName is created on demand when stock is added without any location.
const DefaultLocationName = "Général"

// Location is a shelf, cupboard or freezer holding lots.
type Location struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	IsFreezer   bool   `gorm:"not null;default:false"`
	Description *string
	CreatedAt   time.Time
}
