package model

import (
	"strings"
	"time"
)

// Expiry kinds. DLC is a hard use-by date, DDM a softer best-by date.
const (
	ExpiryDLC = "DLC"
	ExpiryDDM = "DDM"
)

// Defaults applied when a product is created without them.
const (
	DefaultUnit          = "pièce"
	DefaultShelfLifeDays = 90
)

// Product is a catalog entry. Lots reference it; it never owns quantity itself.
type Product struct {
	ID                     uint     `gorm:"primaryKey"`
	Name                   string   `gorm:"uniqueIndex;not null"`
	Unit                   string   `gorm:"not null;default:'pièce'"`
	DefaultShelfLifeDays   int      `gorm:"not null"`
	Barcode                *string  `gorm:"index"` // unique when non-empty, see infra.applySchemaPatches
	MinQty                 *float64 // nil disables low-stock alerting
	LowStockEnabled        *bool    `gorm:"not null;default:true"`
	ExpiryKind             string   `gorm:"not null;default:'DLC'"`
	DefaultFreezeShelfDays *int
	NoFreeze               bool `gorm:"not null;default:false"`
	Category               *string
	ParentID               *uint `gorm:"index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Unit families used to infer a sensible adjustment step.
const (
	UnitFamilyCount  = "count"
	UnitFamilyMass   = "mass"
	UnitFamilyVolume = "volume"
)

// AlertsLowStock reports whether low-stock alerting applies: a threshold is
// set and alerting has not been switched off.
func (p Product) AlertsLowStock() bool {
	return p.MinQty != nil && (p.LowStockEnabled == nil || *p.LowStockEnabled)
}

// UnitFamily classifies a unit label. Anything unrecognised counts as pieces.
func UnitFamily(unit string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "gr", "gramme", "grammes", "kg", "kilo", "kilogramme", "kilogrammes":
		return UnitFamilyMass
	case "ml", "cl", "l", "litre", "litres":
		return UnitFamilyVolume
	default:
		return UnitFamilyCount
	}
}

// UnitStep returns the quantity one "+1" or "-1" stands for in the given unit.
func UnitStep(unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "gr", "gramme", "grammes":
		return 50
	case "kg", "kilo", "kilogramme", "kilogrammes":
		return 0.1
	case "ml":
		return 50
	case "cl":
		return 5
	case "l", "litre", "litres":
		return 0.1
	default:
		return 1
	}
}
