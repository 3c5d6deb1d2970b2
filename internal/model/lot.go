package model

import "github.com/shopspring/decimal"

// DateLayout is the calendar-date format used for every date column.
const DateLayout = "2006-01-02"

// Lot is a physical batch of one product in one location.
//
// A lot is either live (row present, Qty > 0) or deleted. Consumption that
// brings Qty to zero removes the row; a zero-quantity lot is never stored.
type Lot struct {
	ID         uint    `gorm:"primaryKey"`
	ProductID  uint    `gorm:"not null;index"`
	LocationID uint    `gorm:"not null;index"`
	Qty        float64 `gorm:"type:double precision;not null"`
	FrozenOn   *string `gorm:"size:10"`
	BestBefore *string `gorm:"size:10;index"`
	CreatedOn  *string `gorm:"size:10"`

	Purchase PurchaseInfo `gorm:"embedded;embeddedPrefix:purchase_"`

	Product  *Product  `gorm:"foreignKey:ProductID"`
	Location *Location `gorm:"foreignKey:LocationID"`
}

// TableName keeps the historical table name.
func (Lot) TableName() string { return "stock_lots" }

// PurchaseInfo is descriptive data captured when a lot comes from a purchase.
// It never takes part in quantity or FIFO decisions.
type PurchaseInfo struct {
	ArticleName    *string
	Brand          *string
	EAN            *string
	Store          *string
	PriceTotal     decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	QtyPerUnit     *float64
	UnitAtPurchase *string
	Multiplier     *int
	Note           *string
}

// IsZero reports whether no purchase field is set.
func (p PurchaseInfo) IsZero() bool {
	return p.ArticleName == nil && p.Brand == nil && p.EAN == nil && p.Store == nil &&
		!p.PriceTotal.Valid && p.QtyPerUnit == nil && p.UnitAtPurchase == nil &&
		p.Multiplier == nil && p.Note == nil
}
