package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateLotRequest struct {
	ProductID  uint             `json:"product_id"  validate:"required"`
	LocationID uint             `json:"location_id" validate:"required"`
	Qty        float64          `json:"qty"         validate:"required,gt=0"`
	FrozenOn   *string          `json:"frozen_on"   validate:"omitempty,datetime=2006-01-02"`
	BestBefore *string          `json:"best_before" validate:"omitempty,datetime=2006-01-02"`
	Purchase   *PurchaseDetails `json:"purchase"`
}

type MergeLotRequest struct {
	ProductID  uint    `json:"product_id"  validate:"required"`
	LocationID uint    `json:"location_id" validate:"required"`
	QtyDelta   float64 `json:"qty_delta"   validate:"required,gt=0"`
	FrozenOn   *string `json:"frozen_on"   validate:"omitempty,datetime=2006-01-02"`
	BestBefore *string `json:"best_before" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateLotRequest struct {
	Qty        float64 `json:"qty"         validate:"required,gt=0"`
	LocationID uint    `json:"location_id" validate:"required"`
	FrozenOn   *string `json:"frozen_on"   validate:"omitempty,datetime=2006-01-02"`
	BestBefore *string `json:"best_before" validate:"omitempty,datetime=2006-01-02"`
}

type ConsumeRequest struct {
	Qty float64 `json:"qty" validate:"required,gt=0"`
}

// PurchaseDetails is the descriptive payload attached to a lot bought in a shop.
type PurchaseDetails struct {
	ArticleName    *string              `json:"article_name"     validate:"omitempty,max=200"`
	Brand          *string              `json:"brand"            validate:"omitempty,max=120"`
	EAN            *string              `json:"ean"              validate:"omitempty,max=32"`
	Store          *string              `json:"store"            validate:"omitempty,max=120"`
	PriceTotal     *decimal.NullDecimal `json:"price_total"`
	QtyPerUnit     *float64             `json:"qty_per_unit"     validate:"omitempty,gt=0"`
	UnitAtPurchase *string              `json:"unit_at_purchase" validate:"omitempty,max=20"`
	Multiplier     *int                 `json:"multiplier"       validate:"omitempty,min=1"`
	Note           *string              `json:"note"             validate:"omitempty,max=500"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type LotFilter struct {
	ProductID  uint   `form:"product_id"`
	LocationID uint   `form:"location_id"`
	Status     string `form:"status" validate:"omitempty,oneof=red yellow green unknown"`
	Q          string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LotResponse struct {
	ID           uint             `json:"id"`
	ProductID    uint             `json:"product_id"`
	ProductName  string           `json:"product_name"`
	Unit         string           `json:"unit"`
	LocationID   uint             `json:"location_id"`
	LocationName string           `json:"location_name"`
	IsFreezer    bool             `json:"is_freezer"`
	Qty          float64          `json:"qty"`
	FrozenOn     *string          `json:"frozen_on"`
	BestBefore   *string          `json:"best_before"`
	CreatedOn    *string          `json:"created_on"`
	Status       string           `json:"status"`
	DaysLeft     *int             `json:"days_left"`
	Purchase     *PurchaseDetails `json:"purchase,omitempty"`
}

type MergeResult struct {
	Action string  `json:"action"` // "merge" | "insert"
	LotID  uint    `json:"lot_id"`
	NewQty float64 `json:"new_qty"`
}

// ConsumeStep describes one single-lot decrement.
type ConsumeStep struct {
	LotID      uint    `json:"lot_id"`
	Taken      float64 `json:"taken"`
	Before     float64 `json:"before"`
	After      float64 `json:"after"`
	Deleted    bool    `json:"deleted"`
	BestBefore *string `json:"best_before"`
	LocationID uint    `json:"location_id"`
	Location   string  `json:"location"`
}

type FIFOResponse struct {
	ProductID              uint          `json:"product_id"`
	RequestedQty           float64       `json:"requested_qty"`
	ConsumedQty            float64       `json:"consumed_qty"`
	RemainingUnconsumedQty float64       `json:"remaining_unconsumed_qty"`
	Operations             []ConsumeStep `json:"operations"`
	TotalBefore            float64       `json:"total_before"`
	TotalAfter             float64       `json:"total_after"`
}
